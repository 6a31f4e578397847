package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storybook-server/internal/domain"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp ErrorResponse

	var schemaErr *domain.SchemaValidationError
	switch {
	case errors.Is(err, domain.ErrStoryNotFound):
		statusCode = http.StatusNotFound
		errResp = ErrorResponse{Code: ErrCodeStoryNotFound, Message: "Story not found"}
	case errors.As(err, &schemaErr):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeValidation, Message: schemaErr.Error()}
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Code: ErrCodeBadRequest, Message: err.Error()}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{Code: ErrCodeInternal, Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
