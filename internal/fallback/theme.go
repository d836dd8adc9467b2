// Package fallback maps prompts to procedural background themes used when
// image generation is skipped or fails. Mapping never fails and never blocks.
package fallback

import (
	"fmt"
	"strings"

	"contentgate/internal/daily"
)

// Theme is a procedural substitute for a generated image: an animated effect
// id, the themed gradient that backs it, and a decorative gradient id from a
// small fixed palette.
type Theme struct {
	EffectID   string
	Gradient   string
	GradientID string
}

// rule maps a keyword set to an effect and its themed gradient. Rules are
// evaluated in order; the first keyword match wins, so priority is explicit
// and auditable.
type rule struct {
	keywords []string
	effect   string
	gradient string
}

var rules = []rule{
	{
		keywords: []string{"space", "cosmic", "galaxy", "stars", "planet"},
		effect:   "globe",
		gradient: "linear-gradient(135deg, #667eea 0%, #764ba2 50%, #f093fb 100%)",
	},
	{
		keywords: []string{"ocean", "underwater", "sea", "water", "wave"},
		effect:   "waves",
		gradient: "linear-gradient(135deg, #74b9ff 0%, #0984e3 50%, #6c5ce7 100%)",
	},
	{
		keywords: []string{"laboratory", "science", "experiment", "research"},
		effect:   "net",
		gradient: "linear-gradient(135deg, #a29bfe 0%, #74b9ff 50%, #0984e3 100%)",
	},
	{
		keywords: []string{"forest", "jungle", "nature", "garden", "plant"},
		effect:   "cells",
		gradient: "linear-gradient(135deg, #00b894 0%, #00a085 50%, #2d3436 100%)",
	},
	{
		keywords: []string{"cave", "crystal", "mineral", "geology", "fossil"},
		effect:   "topology",
		gradient: "linear-gradient(135deg, #636e72 0%, #2d3436 50%, #dddddd 100%)",
	},
	{
		keywords: []string{"magical", "fantasy", "mystical", "enchanted"},
		effect:   "halo",
		gradient: "linear-gradient(135deg, #fd79a8 0%, #a29bfe 50%, #fdcb6e 100%)",
	},
	{
		keywords: []string{"desert", "sand", "archaeology", "dig"},
		effect:   "rings",
		gradient: "linear-gradient(135deg, #fdcb6e 0%, #fd79a8 50%, #e17055 100%)",
	},
	{
		keywords: []string{"arctic", "ice", "snow", "frozen"},
		effect:   "clouds2",
		gradient: "linear-gradient(135deg, #74b9ff 0%, #a29bfe 50%, #fd79a8 100%)",
	},
	{
		keywords: []string{"volcano", "fire", "lava", "eruption"},
		effect:   "birds",
		gradient: "linear-gradient(135deg, #fd63a8 0%, #fc7303 50%, #2d3436 100%)",
	},
}

var defaultRule = rule{
	effect:   "globe",
	gradient: "linear-gradient(135deg, #667eea 0%, #764ba2 50%, #f093fb 100%)",
}

// palette holds the decorative gradients picked independently of the theme.
var palette = []string{
	"linear-gradient(135deg, #667eea 0%, #764ba2 50%, #f093fb 100%)",
	"linear-gradient(135deg, #74b9ff 0%, #0984e3 50%, #6c5ce7 100%)",
	"linear-gradient(135deg, #00b894 0%, #00a085 50%, #2d3436 100%)",
	"linear-gradient(135deg, #fd79a8 0%, #fdcb6e 50%, #6c5ce7 100%)",
}

// MapToTheme scans the prompt for the first matching keyword set and returns
// its theme. Unmatched prompts get the default effect. The decorative
// gradient id is derived from the prompt hash, so the same prompt always
// yields the same theme and cached fallbacks stay stable.
func MapToTheme(promptText string) Theme {
	lower := strings.ToLower(promptText)
	matched := defaultRule
	for _, r := range rules {
		if containsAny(lower, r.keywords) {
			matched = r
			break
		}
	}
	index := int(daily.Hash(promptText) % uint32(len(palette)))
	return Theme{
		EffectID:   matched.effect,
		Gradient:   matched.gradient,
		GradientID: fmt.Sprintf("g%d", index),
	}
}

// DecorativeGradient returns the palette entry for a gradient id. Unknown ids
// fall back to the first palette entry.
func DecorativeGradient(id string) string {
	var index int
	if _, err := fmt.Sscanf(id, "g%d", &index); err != nil || index < 0 || index >= len(palette) {
		index = 0
	}
	return palette[index]
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
