package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quantpath-backend/internal/http/response"
	"github.com/yungbote/quantpath-backend/internal/services"
)

type LearningPathHandler struct {
	paths services.LearningPathService
}

func NewLearningPathHandler(paths services.LearningPathService) *LearningPathHandler {
	return &LearningPathHandler{paths: paths}
}

type coverageRequest struct {
	Topic     string   `json:"topic" binding:"required"`
	Keywords  []string `json:"keywords"`
	Threshold float64  `json:"threshold"`
}

// POST /api/coverage
func (h *LearningPathHandler) CheckCoverage(c *gin.Context) {
	var req coverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		badRequest(c, fmt.Errorf("threshold must be within [0, 1]"))
		return
	}
	response.RespondOK(c, h.paths.CheckCoverage(c.Request.Context(), req.Topic, req.Keywords, req.Threshold))
}

type generatePathRequest struct {
	JobDescription string `json:"job_description" binding:"required"`
}

// POST /api/users/:user_id/paths
//
// A topic extraction failure yields no path: 429 when the LLM is rate
// limited, 502 for any other LLM failure.
func (h *LearningPathHandler) GeneratePath(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	var req generatePathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.paths.Generate(c.Request.Context(), userID, req.JobDescription)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/users/:user_id/paths/current
func (h *LearningPathHandler) CurrentPath(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	path, err := h.paths.Current(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"path": path})
}

// GET /api/users/:user_id/paths?limit=
func (h *LearningPathHandler) ListPaths(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "user_id")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	paths, err := h.paths.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"paths": paths})
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		badRequest(c, fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}
