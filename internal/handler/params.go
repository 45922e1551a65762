package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/pkg/response"
)

// paging reads ?page and ?limit. Range checks belong to the service; only
// non-numeric input is rejected here.
func paging(c *gin.Context, defaultLimit int) (page, limit int, ok bool) {
	page, ok = intQuery(c, "page", 1)
	if !ok {
		return 0, 0, false
	}
	limit, ok = intQuery(c, "limit", defaultLimit)
	return page, limit, ok
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return 0, false
	}
	return n, true
}

// bindJSON hides decoder details from clients.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return false
	}
	return true
}
