package content

// Placeholder marks a deterministic stand-in returned when generation failed.
// Placeholders are never cached.

type Explanation struct {
	Markdown    string   `json:"markdown"`
	KeyPoints   []string `json:"key_points"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

type Section struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type TopicStructure struct {
	Topic       string    `json:"topic"`
	Overview    string    `json:"overview"`
	Sections    []Section `json:"sections"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

type SectionContent struct {
	SectionID   string   `json:"section_id"`
	Title       string   `json:"title"`
	Markdown    string   `json:"markdown"`
	KeyPoints   []string `json:"key_points"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

type ExplanationRequest struct {
	Topic       string
	Summary     string
	ContentType string
	Difficulty  string
	Excerpts    []string
}

type StructureRequest struct {
	Topic    string
	Keywords []string
	Excerpts []string
}

type SectionRequest struct {
	Topic        string
	SectionID    string
	SectionTitle string
	Excerpts     []string
}
