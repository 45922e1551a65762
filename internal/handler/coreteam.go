package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/pkg/response"
)

type CoreTeamHandler struct {
	svc service.CoreTeamService
}

func NewCoreTeamHandler(svc service.CoreTeamService) *CoreTeamHandler {
	return &CoreTeamHandler{svc: svc}
}

func (h *CoreTeamHandler) Register(public, admin *gin.RouterGroup) {
	g := public.Group("/core-team")
	{
		g.GET("", h.list)
		g.GET("/:id", h.get)
	}
	a := admin.Group("/core-team")
	{
		a.POST("", h.create)
		a.PATCH("/:id", h.update)
		a.DELETE("/:id", h.delete)
	}
}

func (h *CoreTeamHandler) list(c *gin.Context) {
	res, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "core team fetched", res)
}

func (h *CoreTeamHandler) get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "core team member fetched", m)
}

func (h *CoreTeamHandler) create(c *gin.Context) {
	var in service.CoreTeamInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "core team member created", m)
}

func (h *CoreTeamHandler) update(c *gin.Context) {
	var in service.CoreTeamPatchInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "core team member updated", m)
}

func (h *CoreTeamHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, "core team member deleted", nil)
}
