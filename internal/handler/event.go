package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/pkg/response"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler { return &EventHandler{svc: svc} }

func (h *EventHandler) Register(public, admin *gin.RouterGroup) {
	g := public.Group("/events")
	{
		g.GET("", h.list)
		g.GET("/:id", h.get)
	}
	a := admin.Group("/events")
	{
		a.POST("", h.create)
		a.PATCH("/:id", h.update)
		a.DELETE("/:id", h.delete)
	}
}

func (h *EventHandler) list(c *gin.Context) {
	page, limit, ok := paging(c, 10)
	if !ok {
		return
	}
	res, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "events fetched", res)
}

func (h *EventHandler) get(c *gin.Context) {
	ev, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "event fetched", ev)
}

func (h *EventHandler) create(c *gin.Context) {
	var in service.EventInput
	if !bindJSON(c, &in) {
		return
	}
	ev, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "event created", ev)
}

func (h *EventHandler) update(c *gin.Context) {
	var in service.EventPatchInput
	if !bindJSON(c, &in) {
		return
	}
	ev, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "event updated", ev)
}

func (h *EventHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "event deleted", nil)
}
