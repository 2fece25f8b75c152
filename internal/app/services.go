package app

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/graph"
	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/content"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/coverage"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/pathbuild"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/search"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/topics"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/services"
)

type Services struct {
	LearningPath    services.LearningPathService
	LearningContent services.LearningContentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos) Services {
	log.Info("Wiring services...")

	searcher := search.New(log, clients.OpenAI, clients.Vectors, search.Config{
		WebNamespaces: cfg.Coverage.WebNamespaces,
	})
	classifier := coverage.New(log, searcher, clients.Fallbacks, coverage.Config{
		Threshold:   cfg.Coverage.Threshold,
		TopK:        cfg.Coverage.TopK,
		Namespaces:  cfg.Coverage.Namespaces,
		Concurrency: cfg.Coverage.Concurrency,
	})

	var mirror services.PathMirror
	if clients.Neo4j != nil {
		mirror = func(ctx context.Context, view *learning.PathView, nodeIDs map[string]uuid.UUID) error {
			return graph.UpsertLearningPathGraph(ctx, clients.Neo4j, log, view, nodeIDs)
		}
	}

	return Services{
		LearningPath: services.NewLearningPathService(
			db,
			log,
			reposet.LearningNode,
			reposet.LearningPath,
			topics.New(log, clients.OpenAI),
			classifier,
			pathbuild.New(log, pathbuild.NewLLMDrafter(log, clients.OpenAI)),
			clients.Events,
			mirror,
		),
		LearningContent: services.NewLearningContentService(
			db,
			log,
			reposet.LearningNode,
			reposet.ExplanationCache,
			reposet.TopicStructureCache,
			reposet.SectionContentCache,
			content.NewGenerator(log, clients.OpenAI),
			classifier,
			clients.Events,
		),
	}
}
