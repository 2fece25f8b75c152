package learning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LearningNode is the persistent identity of a topic. ContentVersion takes
// part in the explanation cache key: bumping it orphans every older
// explanation row for the node.
//
// The coverage columns hold the outcome of the last coverage check for the
// topic; its chunks ground later content generation.
type LearningNode struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name               string         `gorm:"column:name;not null" json:"name"`
	NormalizedName     string         `gorm:"column:normalized_name;not null;uniqueIndex:idx_learning_node_name" json:"normalized_name"`
	Summary            string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	ContentVersion     int            `gorm:"column:content_version;not null" json:"content_version"`
	Covered            bool           `gorm:"column:covered;not null;default:false" json:"covered"`
	CoverageConfidence float64        `gorm:"column:coverage_confidence;not null;default:0" json:"coverage_confidence"`
	CoverageChunks     datatypes.JSON `gorm:"column:coverage_chunks;type:jsonb" json:"coverage_chunks,omitempty"`
	CoverageCheckedAt  *time.Time     `gorm:"column:coverage_checked_at" json:"coverage_checked_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (LearningNode) TableName() string { return "learning_node" }

// CoverageExcerpts returns the chunks recorded by the last coverage check and
// whether a check was recorded at all. Uncovered topics have no excerpts.
func (n *LearningNode) CoverageExcerpts() ([]string, bool) {
	if n == nil || n.CoverageCheckedAt == nil {
		return nil, false
	}
	if !n.Covered || len(n.CoverageChunks) == 0 {
		return nil, true
	}
	var out []string
	if err := json.Unmarshal(n.CoverageChunks, &out); err != nil {
		return nil, false
	}
	return out, true
}
