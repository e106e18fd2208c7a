package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/response"
)

const (
	defaultFrom = 0
	defaultSize = 20
)

// parseFromSize reads the offset-style paging parameters. Range checks are
// left to the services; only non-numeric input is rejected here.
func parseFromSize(c *gin.Context) (int, int, bool) {
	from, err := intQuery(c, "from", defaultFrom)
	if err != nil {
		response.BadRequest(c, "from must be an integer")
		return 0, 0, false
	}
	size, err := intQuery(c, "size", defaultSize)
	if err != nil {
		response.BadRequest(c, "size must be an integer")
		return 0, 0, false
	}
	return from, size, true
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

func uuidParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}
