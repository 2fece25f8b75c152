package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/quantpath-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quantpath-backend/internal/http/middleware"
	"github.com/yungbote/quantpath-backend/internal/observability"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	ServiceName string

	HealthHandler          *httpH.HealthHandler
	LearningPathHandler    *httpH.LearningPathHandler
	LearningContentHandler *httpH.LearningContentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Coverage + paths
		if cfg.LearningPathHandler != nil {
			api.POST("/coverage", cfg.LearningPathHandler.CheckCoverage)
			api.POST("/users/:user_id/paths", cfg.LearningPathHandler.GeneratePath)
			api.GET("/users/:user_id/paths", cfg.LearningPathHandler.ListPaths)
			api.GET("/users/:user_id/paths/current", cfg.LearningPathHandler.CurrentPath)
		}

		// Generated content
		if cfg.LearningContentHandler != nil {
			api.GET("/nodes/:id/explanation", cfg.LearningContentHandler.Explanation)
			api.POST("/nodes/:id/invalidate", cfg.LearningContentHandler.InvalidateNode)
			api.POST("/topics/structure", cfg.LearningContentHandler.TopicStructure)
			api.POST("/topics/structure/invalidate", cfg.LearningContentHandler.InvalidateTopicStructure)
			api.POST("/topics/section", cfg.LearningContentHandler.SectionContent)
			api.POST("/topics/section/invalidate", cfg.LearningContentHandler.InvalidateSection)
			api.POST("/cache/purge", cfg.LearningContentHandler.PurgeCache)
		}
	}

	return r
}
