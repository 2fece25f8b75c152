package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quantpath-backend/internal/http/response"
	apperrors "github.com/yungbote/quantpath-backend/internal/pkg/errors"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
	"github.com/yungbote/quantpath-backend/internal/services"
)

// respondServiceError maps service errors onto HTTP statuses. System errors
// are attached to the context for the request log.
func respondServiceError(c *gin.Context, err error) {
	if !services.IsUserError(err) {
		_ = c.Error(err)
	}
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument):
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperrors.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	default:
		switch openai.KindOf(err) {
		case openai.KindRateLimited:
			response.RespondError(c, http.StatusTooManyRequests, "llm_rate_limited", err)
		case "":
			response.RespondError(c, http.StatusInternalServerError, "internal", err)
		default:
			response.RespondError(c, http.StatusBadGateway, "llm_"+string(openai.KindOf(err)), err)
		}
	}
}

func badRequest(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
}
