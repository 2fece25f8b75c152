package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quantpath-backend/internal/http/response"
	"github.com/yungbote/quantpath-backend/internal/services"
)

type LearningContentHandler struct {
	content services.LearningContentService
}

func NewLearningContentHandler(content services.LearningContentService) *LearningContentHandler {
	return &LearningContentHandler{content: content}
}

// GET /api/nodes/:id/explanation?content_type=&difficulty=
func (h *LearningContentHandler) Explanation(c *gin.Context) {
	nodeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.content.Explanation(c.Request.Context(), nodeID, c.Query("content_type"), c.Query("difficulty"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/nodes/:id/invalidate
func (h *LearningContentHandler) InvalidateNode(c *gin.Context) {
	nodeID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	version, err := h.content.InvalidateNode(c.Request.Context(), nodeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"node_id": nodeID, "content_version": version})
}

type structureRequest struct {
	Topic    string   `json:"topic" binding:"required"`
	Keywords []string `json:"keywords"`
}

// POST /api/topics/structure
func (h *LearningContentHandler) TopicStructure(c *gin.Context) {
	var req structureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.content.TopicStructure(c.Request.Context(), req.Topic, req.Keywords)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/topics/structure/invalidate
func (h *LearningContentHandler) InvalidateTopicStructure(c *gin.Context) {
	var req structureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.content.InvalidateTopicStructure(c.Request.Context(), req.Topic, req.Keywords)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"invalidated": n})
}

type sectionRequest struct {
	Topic        string `json:"topic" binding:"required"`
	SectionID    string `json:"section_id"`
	SectionTitle string `json:"section_title" binding:"required"`
}

// POST /api/topics/section
func (h *LearningContentHandler) SectionContent(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.content.SectionContent(c.Request.Context(), req.Topic, req.SectionID, req.SectionTitle)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/topics/section/invalidate
func (h *LearningContentHandler) InvalidateSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.content.InvalidateSection(c.Request.Context(), req.Topic, req.SectionID, req.SectionTitle)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"invalidated": n})
}

// POST /api/cache/purge
func (h *LearningContentHandler) PurgeCache(c *gin.Context) {
	deleted, err := h.content.PurgeInvalid(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": deleted})
}
