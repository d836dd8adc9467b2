// Package prompt turns raw topic prompts into the guarded illustration
// instructions sent to the image provider.
package prompt

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Request carries the inputs for building a generation instruction.
type Request struct {
	Topic      string
	GradeLevel int
	Locale     string
}

// BuildIllustrationInstruction wraps the topic in the classroom guardrails:
// age-appropriate framing, no embedded text, no people or harm. The wording
// is stable so identical topics keep producing identical fingerprints
// upstream of the provider.
func BuildIllustrationInstruction(req Request) string {
	grade := "N/A"
	if req.GradeLevel > 0 {
		grade = fmt.Sprintf("%d", req.GradeLevel)
	}
	topic := normalizeTopic(req.Topic, req.Locale)
	return fmt.Sprintf(
		"Create an educational, age-appropriate illustration for Grade %s. Topic: %s. "+
			"Requirements: clear and on-topic; no text labels; no people, injuries, or damage; "+
			"focus on a neutral, classroom-safe depiction of the concept.",
		grade, topic,
	)
}

// normalizeTopic tidies shouting-case topic titles (common in imported topic
// catalogs) into title case for the configured locale.
func normalizeTopic(topic, locale string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "general science"
	}
	if topic != strings.ToUpper(topic) || topic == strings.ToLower(topic) {
		return topic
	}
	return cases.Title(languageTag(locale)).String(strings.ToLower(topic))
}

func languageTag(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
