package handler

import (
	"errors"
	"net/http"

	"billing/internal/logger"
	"billing/internal/service"
	"billing/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP status codes and writes the error envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		logger.WithComponent("http").Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.JSON(status, response.Error(status, err.Error()))
}

func badPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}
