package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"workshops/internal/service"
)

// ServeUpload streams a stored upload. It is public so <img> and download links work
// without a token.
func (h HandlerSet) ServeUpload(c *gin.Context) {
	rc, info, err := h.svc.Uploads.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, nil)
}

func (h HandlerSet) UploadStoredFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	file, err := h.svc.Uploads.StoreBlob(c.Request.Context(), service.FromMultipart(header))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        file.ID,
		"name":      file.Name,
		"mimeType":  file.MimeType,
		"size":      len(file.Data),
		"createdAt": file.CreatedAt,
	})
}

func (h HandlerSet) GetStoredFile(c *gin.Context) {
	file, err := h.svc.Uploads.GetBlob(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Name))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, file.MimeType, file.Data)
}
