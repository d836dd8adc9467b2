package jsoncfg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PromptJSON is the canonical generation request contract persisted with jobs
// and accepted by the API.
type PromptJSON struct {
	Prompt      string `json:"prompt"`
	TopicID     string `json:"topic_id,omitempty"`
	AspectRatio string `json:"aspect_ratio"`
	GradeLevel  int    `json:"grade_level,omitempty"`
	SkipCache   bool   `json:"skip_cache,omitempty"`
	Locale      string `json:"locale,omitempty"`
}

var allowedAspectRatios = map[string]struct{}{
	"1:1":  {},
	"4:3":  {},
	"3:4":  {},
	"16:9": {},
	"9:16": {},
}

const (
	// DefaultAspectRatio is used when the request omits the aspect ratio.
	DefaultAspectRatio = "16:9"
	// DefaultLocale is applied when no locale preference is provided.
	DefaultLocale = "en"
	// MaxGradeLevel caps the target grade; zero means "any grade".
	MaxGradeLevel = 12
)

// Normalize ensures the prompt JSON respects server defaults and limits.
func (p *PromptJSON) Normalize(preferredLocale string) {
	if p == nil {
		return
	}
	p.Prompt = strings.TrimSpace(p.Prompt)
	if p.AspectRatio == "" {
		p.AspectRatio = DefaultAspectRatio
	}
	if p.GradeLevel < 0 {
		p.GradeLevel = 0
	}
	if p.GradeLevel > MaxGradeLevel {
		p.GradeLevel = MaxGradeLevel
	}
	if p.Locale == "" {
		if preferredLocale != "" {
			p.Locale = preferredLocale
		} else {
			p.Locale = DefaultLocale
		}
	}
}

// Validate rejects requests the pipeline cannot serve.
func (p *PromptJSON) Validate() error {
	if p == nil {
		return fmt.Errorf("prompt payload is required")
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return fmt.Errorf("prompt text is required")
	}
	if _, ok := allowedAspectRatios[p.AspectRatio]; !ok {
		return fmt.Errorf("aspect ratio %q is not supported", p.AspectRatio)
	}
	return nil
}

// MustMarshal serializes v and panics on failure. Intended for values the
// caller fully controls.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
