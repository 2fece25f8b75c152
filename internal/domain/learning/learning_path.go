package learning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LearningPath rows are written once per generation and never updated. The
// current path for a user is the most recently created row.
type LearningPath struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;column:user_id;not null;index:idx_learning_path_user_created,priority:1" json:"user_id"`
	JobDescription     string         `gorm:"column:job_description;type:text;not null" json:"job_description"`
	RoleType           string         `gorm:"column:role_type" json:"role_type"`
	Seniority          string         `gorm:"column:seniority" json:"seniority"`
	DomainFocus        string         `gorm:"column:domain_focus" json:"domain_focus"`
	Stages             datatypes.JSON `gorm:"column:stages;type:jsonb;not null" json:"stages"`
	Dependencies       datatypes.JSON `gorm:"column:dependencies;type:jsonb;not null" json:"dependencies"`
	CoveredTopics      datatypes.JSON `gorm:"column:covered_topics;type:jsonb;not null" json:"covered_topics"`
	UncoveredTopics    datatypes.JSON `gorm:"column:uncovered_topics;type:jsonb;not null" json:"uncovered_topics"`
	CoveragePercentage float64        `gorm:"column:coverage_percentage;not null" json:"coverage_percentage"`
	CreatedAt          time.Time      `gorm:"not null;index:idx_learning_path_user_created,priority:2,sort:desc" json:"created_at"`
}

func (LearningPath) TableName() string { return "learning_path" }

// PathView is the decoded form of a LearningPath row.
type PathView struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	RoleType           string           `json:"role_type"`
	Seniority          string           `json:"seniority"`
	DomainFocus        string           `json:"domain_focus"`
	Stages             []Stage          `json:"stages"`
	Dependencies       []DependencyEdge `json:"dependencies"`
	CoveredTopics      []string         `json:"covered_topics"`
	UncoveredTopics    []string         `json:"uncovered_topics"`
	CoveragePercentage float64          `json:"coverage_percentage"`
	CreatedAt          time.Time        `json:"created_at"`
}

func (p *LearningPath) View() (*PathView, error) {
	if p == nil {
		return nil, nil
	}
	v := &PathView{
		ID:                 p.ID,
		UserID:             p.UserID,
		RoleType:           p.RoleType,
		Seniority:          p.Seniority,
		DomainFocus:        p.DomainFocus,
		CoveragePercentage: p.CoveragePercentage,
		CreatedAt:          p.CreatedAt,
	}
	for _, f := range []struct {
		raw datatypes.JSON
		dst any
	}{
		{p.Stages, &v.Stages},
		{p.Dependencies, &v.Dependencies},
		{p.CoveredTopics, &v.CoveredTopics},
		{p.UncoveredTopics, &v.UncoveredTopics},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, err
		}
	}
	return v, nil
}
