package prompts

type PromptName string

const (
	// Planning
	PromptTopicExtraction PromptName = "topic_extraction"
	PromptPathDraft       PromptName = "path_draft"

	// Generated content
	PromptExplanation    PromptName = "explanation"
	PromptTopicStructure PromptName = "topic_structure"
	PromptSectionContent PromptName = "section_content"
)
