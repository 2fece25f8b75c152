package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Topic extraction
	JobDescription string
	// Path drafting
	RoleType    string
	Seniority   string
	DomainFocus string
	TopicsJSON  string
	// Content generation
	TopicName    string
	TopicSummary string
	KeywordsCSV  string
	ContentType  string
	Difficulty   string
	SectionID    string
	SectionTitle string
	// Corpus excerpts used as grounding, one per line
	Excerpts string
}
