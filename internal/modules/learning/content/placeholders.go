package content

import (
	"fmt"
	"strings"
)

func PlaceholderExplanation(topic, contentType, difficulty string) Explanation {
	topic = strings.TrimSpace(topic)
	return Explanation{
		Markdown: fmt.Sprintf(
			"## %s\n\nA generated %s explanation at %s level is not available right now. "+
				"Start from the recommended sources for this topic and try again later.",
			topic, orDefault(contentType, "concept"), orDefault(difficulty, "intermediate"),
		),
		KeyPoints:   []string{fmt.Sprintf("Review an introductory source on %s.", topic)},
		Placeholder: true,
	}
}

func PlaceholderStructure(topic string) TopicStructure {
	topic = strings.TrimSpace(topic)
	return TopicStructure{
		Topic:    topic,
		Overview: fmt.Sprintf("A study outline for %s.", topic),
		Sections: []Section{
			{ID: "foundations", Title: "Foundations", Summary: fmt.Sprintf("Definitions and notation used in %s.", topic)},
			{ID: "core-methods", Title: "Core methods", Summary: "The main techniques and when to use them."},
			{ID: "applications", Title: "Applications", Summary: "Worked examples from quantitative finance."},
		},
		Placeholder: true,
	}
}

func PlaceholderSection(topic, sectionID, sectionTitle string) SectionContent {
	title := orDefault(sectionTitle, "Section")
	return SectionContent{
		SectionID:   strings.TrimSpace(sectionID),
		Title:       title,
		Markdown:    fmt.Sprintf("## %s\n\nContent for this section of %s is not available right now.", title, strings.TrimSpace(topic)),
		KeyPoints:   []string{},
		Placeholder: true,
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
