package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/repos/learning"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type LearningNodeRepo = learning.LearningNodeRepo
type LearningPathRepo = learning.LearningPathRepo
type ExplanationCacheRepo = learning.ExplanationCacheRepo
type TopicStructureCacheRepo = learning.TopicStructureCacheRepo
type SectionContentCacheRepo = learning.SectionContentCacheRepo

func NewLearningNodeRepo(db *gorm.DB, baseLog *logger.Logger) LearningNodeRepo {
	return learning.NewLearningNodeRepo(db, baseLog)
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return learning.NewLearningPathRepo(db, baseLog)
}

func NewExplanationCacheRepo(db *gorm.DB, baseLog *logger.Logger) ExplanationCacheRepo {
	return learning.NewExplanationCacheRepo(db, baseLog)
}

func NewTopicStructureCacheRepo(db *gorm.DB, baseLog *logger.Logger) TopicStructureCacheRepo {
	return learning.NewTopicStructureCacheRepo(db, baseLog)
}

func NewSectionContentCacheRepo(db *gorm.DB, baseLog *logger.Logger) SectionContentCacheRepo {
	return learning.NewSectionContentCacheRepo(db, baseLog)
}
