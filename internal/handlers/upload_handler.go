package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sphere-events/sphere/internal/clients"
)

const maxUploadSize = 5 * 1024 * 1024 // 5MB

type UploadHandler struct {
	blobs  *clients.BlobClient
	logger *zap.Logger
}

func NewUploadHandler(blobs *clients.BlobClient, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		blobs:  blobs,
		logger: logger,
	}
}

// Upload stores an event image in the blob store and returns its public URL
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an image"})
		return
	}

	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size must be less than 5MB"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	ext := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	name := fmt.Sprintf("uploads/%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	url, err := h.blobs.Upload(c.Request.Context(), name, contentType, file)
	if err != nil {
		h.logger.Error("Upload failed", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "imageUrl": url})
}
