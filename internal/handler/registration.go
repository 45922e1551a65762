package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/pkg/response"
)

type RegistrationHandler struct {
	svc service.RegistrationService
}

func NewRegistrationHandler(svc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Register mounts sign-ups. The event id wildcard matches the events group so
// gin sees one tree.
func (h *RegistrationHandler) Register(public, admin *gin.RouterGroup) {
	public.POST("/registrations", h.submitCommunity)
	public.POST("/events/:id/registrations", h.submitEvent)

	admin.GET("/registrations", h.listCommunity)
	admin.GET("/events/:id/registrations", h.listForEvent)
}

func (h *RegistrationHandler) submitCommunity(c *gin.Context) {
	var in service.CommunityRegistrationInput
	if !bindJSON(c, &in) {
		return
	}
	reg, err := h.svc.SubmitCommunity(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "registration received", reg)
}

func (h *RegistrationHandler) submitEvent(c *gin.Context) {
	var in service.EventRegistrationInput
	if !bindJSON(c, &in) {
		return
	}
	in.EventID = c.Param("id")
	reg, err := h.svc.SubmitEvent(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "registered for event", reg)
}

func (h *RegistrationHandler) listCommunity(c *gin.Context) {
	page, limit, ok := paging(c, 20)
	if !ok {
		return
	}
	res, err := h.svc.ListCommunity(c.Request.Context(), page, limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "registrations fetched", res)
}

func (h *RegistrationHandler) listForEvent(c *gin.Context) {
	page, limit, ok := paging(c, 20)
	if !ok {
		return
	}
	res, err := h.svc.ListForEvent(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "event registrations fetched", res)
}
