package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/at-ishikawa/notekeeper/internal/logger"
	"github.com/at-ishikawa/notekeeper/internal/notes"
)

// writeError maps service errors to a status code and a {message} body.
// Anything that is not a service error is logged and reported as 500.
func writeError(c *gin.Context, err error) {
	var svcErr *notes.Error
	if !errors.As(err, &svcErr) {
		_ = c.Error(err)
		logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(svcErr, notes.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(svcErr, notes.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(svcErr, notes.ErrConflict):
		status = http.StatusConflict
	case errors.Is(svcErr, notes.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, gin.H{"message": svcErr.Message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": message})
}

// intParams parses the named path parameters as integers.
func intParams(c *gin.Context, names ...string) ([]int, bool) {
	values := make([]int, 0, len(names))
	for _, name := range names {
		v, err := strconv.Atoi(c.Param(name))
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}
