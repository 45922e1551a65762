package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/pkg/response"
)

type DashboardHandler struct {
	svc service.DashboardService
}

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Register(admin *gin.RouterGroup) {
	g := admin.Group("/dashboard")
	{
		g.GET("/stats", h.stats)
		g.GET("/activities", h.activities)
	}
}

func (h *DashboardHandler) stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "dashboard stats fetched", stats)
}

func (h *DashboardHandler) activities(c *gin.Context) {
	page, limit, ok := paging(c, 5)
	if !ok {
		return
	}
	res, err := h.svc.ActivityFeed(c.Request.Context(), page, limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "activities fetched", res)
}
