package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/repos"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type Repos struct {
	LearningNode        repos.LearningNodeRepo
	LearningPath        repos.LearningPathRepo
	ExplanationCache    repos.ExplanationCacheRepo
	TopicStructureCache repos.TopicStructureCacheRepo
	SectionContentCache repos.SectionContentCacheRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		LearningNode:        repos.NewLearningNodeRepo(db, log),
		LearningPath:        repos.NewLearningPathRepo(db, log),
		ExplanationCache:    repos.NewExplanationCacheRepo(db, log),
		TopicStructureCache: repos.NewTopicStructureCacheRepo(db, log),
		SectionContentCache: repos.NewSectionContentCacheRepo(db, log),
	}
}
