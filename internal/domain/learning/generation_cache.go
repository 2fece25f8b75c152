package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// The three generation cache tables share one shape: key columns, a JSON
// payload, an access counter and a validity flag. A partial unique index keeps
// at most one valid row per key; invalid rows stay until purged.

type ExplanationCache struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	NodeID         uuid.UUID      `gorm:"type:uuid;column:node_id;not null;index;uniqueIndex:idx_explanation_cache_key,priority:1,where:is_valid = true" json:"node_id"`
	ContentType    string         `gorm:"column:content_type;not null;uniqueIndex:idx_explanation_cache_key,priority:2" json:"content_type"`
	Difficulty     string         `gorm:"column:difficulty;not null;uniqueIndex:idx_explanation_cache_key,priority:3" json:"difficulty"`
	ContentVersion int            `gorm:"column:content_version;not null;uniqueIndex:idx_explanation_cache_key,priority:4" json:"content_version"`
	Payload        datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	AccessCount    int            `gorm:"column:access_count;not null" json:"access_count"`
	IsValid        bool           `gorm:"column:is_valid;not null;index" json:"is_valid"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (ExplanationCache) TableName() string { return "explanation_cache" }

type TopicStructureCache struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CacheKey    string         `gorm:"column:cache_key;size:64;not null;uniqueIndex:idx_topic_structure_cache_key,where:is_valid = true" json:"cache_key"`
	TopicName   string         `gorm:"column:topic_name;not null;index" json:"topic_name"`
	Keywords    datatypes.JSON `gorm:"column:keywords;type:jsonb" json:"keywords"`
	Payload     datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	AccessCount int            `gorm:"column:access_count;not null" json:"access_count"`
	IsValid     bool           `gorm:"column:is_valid;not null;index" json:"is_valid"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (TopicStructureCache) TableName() string { return "topic_structure_cache" }

type SectionContentCache struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CacheKey     string         `gorm:"column:cache_key;size:64;not null;uniqueIndex:idx_section_content_cache_key,where:is_valid = true" json:"cache_key"`
	TopicName    string         `gorm:"column:topic_name;not null;index" json:"topic_name"`
	SectionID    string         `gorm:"column:section_id;not null" json:"section_id"`
	SectionTitle string         `gorm:"column:section_title;not null" json:"section_title"`
	Payload      datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	AccessCount  int            `gorm:"column:access_count;not null" json:"access_count"`
	IsValid      bool           `gorm:"column:is_valid;not null;index" json:"is_valid"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (SectionContentCache) TableName() string { return "section_content_cache" }

// ExplanationCacheKey identifies one explanation variant of one node version.
type ExplanationCacheKey struct {
	NodeID         uuid.UUID
	ContentType    string
	Difficulty     string
	ContentVersion int
}
