package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/community-hub-service/internal/service"
	"github.com/maxviazov/community-hub-service/pkg/response"
)

type UploadHandler struct {
	svc service.UploadService
}

func NewUploadHandler(svc service.UploadService) *UploadHandler { return &UploadHandler{svc: svc} }

func (h *UploadHandler) Register(admin *gin.RouterGroup) {
	admin.POST("/uploads", h.upload)
}

// upload expects a multipart form with the image in the "file" part.
func (h *UploadHandler) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.WriteError(c, err)
		return
	}
	defer f.Close()

	url, err := h.svc.UploadImage(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusCreated, "image uploaded", gin.H{"url": url})
}
