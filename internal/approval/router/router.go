package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OpenMFG/formflow/internal/apperr"
)

// respondError maps a workflow error kind to an HTTP status and a stable
// JSON body. Unknown errors surface as 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(apperr.KindInternal),
			"message": "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotAuthorized:
		status = http.StatusForbidden
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInvalidState:
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"error":   string(appErr.Kind),
		"message": appErr.Message,
	})
}

// pathUUID parses a UUID path parameter, responding 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   string(apperr.KindValidation),
			"message": "invalid " + name + ": " + raw,
		})
		return uuid.Nil, false
	}
	return id, true
}

// paginationParams reads optional offset/limit query parameters.
func paginationParams(c *gin.Context) (offset *int, limit *int, ok bool) {
	if offsetStr := c.Query("offset"); offsetStr != "" {
		value, err := strconv.Atoi(offsetStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   string(apperr.KindValidation),
				"message": "invalid 'offset' query parameter, must be an integer",
			})
			return nil, nil, false
		}
		offset = &value
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		value, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   string(apperr.KindValidation),
				"message": "invalid 'limit' query parameter, must be an integer",
			})
			return nil, nil, false
		}
		limit = &value
	}
	return offset, limit, true
}
