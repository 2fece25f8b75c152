package domain

import (
	"github.com/yungbote/quantpath-backend/internal/domain/learning"
)

type LearningNode = learning.LearningNode
type LearningPath = learning.LearningPath
type ExplanationCache = learning.ExplanationCache
type TopicStructureCache = learning.TopicStructureCache
type SectionContentCache = learning.SectionContentCache

// AllModels lists every gorm model for auto-migration.
func AllModels() []any {
	return []any{
		&LearningNode{},
		&LearningPath{},
		&ExplanationCache{},
		&TopicStructureCache{},
		&SectionContentCache{},
	}
}

type ExplanationCacheKey = learning.ExplanationCacheKey
