package prompts

// RegisterAll registers every prompt. Build calls it once lazily.
func RegisterAll() {
	// ---------- Planning ----------

	RegisterSpec(Spec{
		Name:       PromptTopicExtraction,
		Version:    1,
		SchemaName: "topic_extraction",
		Schema:     TopicExtractionSchema,
		System: `
You analyse job descriptions for quantitative finance roles.
Identify the knowledge topics a candidate must learn for this role.
EXPLICIT topics are named in the posting; IMPLICIT topics are prerequisites it assumes.
Return JSON only.`,
		User: `
JOB DESCRIPTION:
{{.JobDescription}}

Output rules:
- role_type: short role label (e.g. quant researcher, risk analyst).
- seniority: junior|mid|senior|lead or empty when unclear.
- domain_focus: the main market or asset focus, or empty.
- topics: 6-20 distinct topics, each with priority HIGH|MEDIUM|LOW, tier EXPLICIT|IMPLICIT and 1-5 search keywords.
- Topic names are short noun phrases without numbering.`,
		Validators: []Validator{
			RequireNonEmpty("JobDescription", func(in Input) string { return in.JobDescription }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptPathDraft,
		Version:    1,
		SchemaName: "path_draft",
		Schema:     PathDraftSchema,
		System: `
You design staged learning paths.
Foundational topics come in earlier stages. A dependency edge means the from_topic must be learned before the to_topic.
Only use topic names from the provided list. Soft skills are never prerequisites of technical topics.
Return JSON only.`,
		User: `
ROLE:
role_type={{.RoleType}} seniority={{.Seniority}} domain_focus={{.DomainFocus}}

TOPICS (JSON, ordered by priority):
{{.TopicsJSON}}

Task:
- Group every topic into 2-6 stages numbered from 1.
- List prerequisite dependencies between topics with a one-line reason.`,
		Validators: []Validator{
			RequireNonEmpty("TopicsJSON", func(in Input) string { return in.TopicsJSON }),
		},
	})

	// ---------- Generated content ----------

	RegisterSpec(Spec{
		Name:       PromptExplanation,
		Version:    1,
		SchemaName: "explanation",
		Schema:     ExplanationSchema,
		System: `
You write concise study explanations for quantitative finance topics.
Ground the explanation in the excerpts when they are provided.
Return JSON only.`,
		User: `
TOPIC: {{.TopicName}}
SUMMARY: {{.TopicSummary}}
CONTENT TYPE: {{.ContentType}}
DIFFICULTY: {{.Difficulty}}

EXCERPTS:
{{.Excerpts}}

Output rules:
- markdown: explanation in markdown, pitched at the requested difficulty.
- key_points: 3-7 short takeaways.`,
		Validators: []Validator{
			RequireNonEmpty("TopicName", func(in Input) string { return in.TopicName }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptTopicStructure,
		Version:    1,
		SchemaName: "topic_structure",
		Schema:     TopicStructureSchema,
		System: `
You outline how a quantitative finance topic should be studied.
Return JSON only.`,
		User: `
TOPIC: {{.TopicName}}
KEYWORDS: {{.KeywordsCSV}}

EXCERPTS:
{{.Excerpts}}

Output rules:
- overview: 2-4 sentences.
- sections: 3-8 sections in study order; id is a short stable slug.`,
		Validators: []Validator{
			RequireNonEmpty("TopicName", func(in Input) string { return in.TopicName }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptSectionContent,
		Version:    1,
		SchemaName: "section_content",
		Schema:     SectionContentSchema,
		System: `
You write one section of a study guide for a quantitative finance topic.
Ground the content in the excerpts when they are provided.
Return JSON only.`,
		User: `
TOPIC: {{.TopicName}}
SECTION: {{.SectionID}} - {{.SectionTitle}}

EXCERPTS:
{{.Excerpts}}

Output rules:
- section_id and title echo the section above.
- markdown: the section body.
- key_points: 3-6 short takeaways.`,
		Validators: []Validator{
			RequireNonEmpty("TopicName", func(in Input) string { return in.TopicName }),
			RequireNonEmpty("SectionTitle", func(in Input) string { return in.SectionTitle }),
		},
	})
}
