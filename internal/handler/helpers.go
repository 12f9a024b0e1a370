package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErr "github.com/marginote/marginote/internal/pkg/errors"
	"github.com/marginote/marginote/internal/pkg/logutil"
	"github.com/marginote/marginote/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, appErr.ErrSchemaMismatch):
		response.Error(c, http.StatusBadRequest, "schema_mismatch", err.Error())
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "invalid", err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, "conflict", "conflict")
	case errors.Is(err, appErr.ErrDependency):
		response.Error(c, http.StatusBadGateway, "dependency_failed", "upstream dependency failed")
	default:
		response.Error(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
