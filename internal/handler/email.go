package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/pkg/response"
)

type EmailHandler struct {
	svc service.EmailService
}

func NewEmailHandler(svc service.EmailService) *EmailHandler { return &EmailHandler{svc: svc} }

// Register mounts the admin-only mail routes.
func (h *EmailHandler) Register(admin *gin.RouterGroup) {
	admin.POST("/events/:id/announcement", h.announce)
	admin.GET("/events/:id/announcement", h.announcementStatus)
	admin.POST("/events/:id/reminders", h.remind)
	admin.GET("/events/:id/reminders", h.reminderStatus)

	g := admin.Group("/emails")
	{
		g.GET("", h.history)
		g.POST("/broadcast", h.broadcast)
	}
}

type reminderRequest struct {
	TimeFrame string `json:"timeFrame"`
}

func (h *EmailHandler) announce(c *gin.Context) {
	rep, err := h.svc.SendAnnouncement(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "announcement sent", rep)
}

func (h *EmailHandler) announcementStatus(c *gin.Context) {
	sent, err := h.svc.AnnouncementSent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "announcement status fetched", gin.H{"sent": sent})
}

func (h *EmailHandler) remind(c *gin.Context) {
	var req reminderRequest
	if !bindJSON(c, &req) {
		return
	}
	rep, err := h.svc.SendReminder(c.Request.Context(), c.Param("id"), req.TimeFrame)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "reminder sent", rep)
}

func (h *EmailHandler) reminderStatus(c *gin.Context) {
	status, err := h.svc.ReminderStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "reminder status fetched", status)
}

func (h *EmailHandler) broadcast(c *gin.Context) {
	var in service.BroadcastInput
	if !bindJSON(c, &in) {
		return
	}
	rep, err := h.svc.SendBroadcast(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "broadcast sent", rep)
}

func (h *EmailHandler) history(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 50)
	if !ok {
		return
	}
	logs, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "email history fetched", logs)
}
