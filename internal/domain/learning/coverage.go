package learning

type MatchedVia string

const (
	MatchedViaTopic   MatchedVia = "topic"
	MatchedViaKeyword MatchedVia = "keyword"
)

type SourceMatch struct {
	SourceName string   `json:"source_name"`
	Confidence float64  `json:"confidence"`
	ChunkCount int      `json:"chunk_count"`
	IsWeb      bool     `json:"is_web"`
	Chunks     []string `json:"chunks"`
}

type FallbackResource struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
	Kind  string `json:"kind" yaml:"kind"`
}

// CoverageResult is covered iff at least one source reached the threshold.
// Sources are sorted by confidence descending and Confidence equals the best
// source when covered; otherwise Sources is empty and Confidence is the best
// score observed.
type CoverageResult struct {
	Topic             string             `json:"topic"`
	Covered           bool               `json:"covered"`
	Confidence        float64            `json:"confidence"`
	Sources           []SourceMatch      `json:"sources"`
	MatchedVia        MatchedVia         `json:"matched_via,omitempty"`
	FallbackResources []FallbackResource `json:"fallback_resources,omitempty"`
}

// Chunks flattens every source's chunks, best source first.
func (r CoverageResult) Chunks() []string {
	var out []string
	for _, s := range r.Sources {
		out = append(out, s.Chunks...)
	}
	return out
}
