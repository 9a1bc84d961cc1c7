package handlers

import (
	"net/http"

	"blog-cms/pkg/metrics"

	"github.com/gin-gonic/gin"
)

func (a *API) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	info, err := a.Media.SaveUpload(file)
	if err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		a.Logger.Error("upload failed", "filename", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	a.Logger.Info("resource uploaded", "filename", info.Filename, "size", info.Size, "mime", info.MIME)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"url":      info.URL,
		"filename": info.Filename,
		"size":     info.Size,
		"mime":     info.MIME,
	})
}
