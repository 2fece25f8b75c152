package app

import (
	httpserver "github.com/yungbote/quantpath-backend/internal/http"
	httpH "github.com/yungbote/quantpath-backend/internal/http/handlers"
	"github.com/yungbote/quantpath-backend/internal/observability"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type Handlers struct {
	Health          *httpH.HealthHandler
	LearningPath    *httpH.LearningPathHandler
	LearningContent *httpH.LearningContentHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:          httpH.NewHealthHandler(),
		LearningPath:    httpH.NewLearningPathHandler(services.LearningPath),
		LearningContent: httpH.NewLearningContentHandler(services.LearningContent),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *httpserver.Server {
	serviceName := ""
	if cfg.OTel.Enabled {
		serviceName = cfg.OTel.ServiceName
	}
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:                    log,
		Metrics:                metrics,
		CORSOrigins:            cfg.Server.CORSOrigins,
		ServiceName:            serviceName,
		HealthHandler:          handlers.Health,
		LearningPathHandler:    handlers.LearningPath,
		LearningContentHandler: handlers.LearningContent,
	})
}
