package handlers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"snaplink/internal/storage"
)

const maxUploadBytes = 25 << 20

var dataURLPattern = regexp.MustCompile(`^data:([^;]+);base64,`)

// MediaHandler uploads chat and story media to object storage.
type MediaHandler struct {
	store storage.ObjectStorage
}

// NewMediaHandler builds a MediaHandler.
func NewMediaHandler(store storage.ObjectStorage) *MediaHandler {
	return &MediaHandler{store: store}
}

// UploadChatImage accepts a base64 data URL and returns the public URL.
func (h *MediaHandler) UploadChatImage(c *gin.Context) {
	h.uploadDataURL(c, "chat")
}

// UploadStoryImage accepts a base64 data URL and returns the public URL.
func (h *MediaHandler) UploadStoryImage(c *gin.Context) {
	h.uploadDataURL(c, "stories")
}

// UploadChatVideo accepts a multipart video file and returns the public URL.
func (h *MediaHandler) UploadChatVideo(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a video file"})
		return
	}

	url, err := h.store.Upload(c.Request.Context(), "chat/videos", file, header.Size, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *MediaHandler) uploadDataURL(c *gin.Context, pathPrefix string) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
		return
	}

	var req struct {
		DataURL string `json:"data_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentType, data, err := decodeDataURL(req.DataURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	url, err := h.store.Upload(c.Request.Context(), pathPrefix, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// decodeDataURL splits a data:<mime>;base64,<payload> URL into its parts.
func decodeDataURL(dataURL string) (contentType string, data []byte, err error) {
	match := dataURLPattern.FindStringSubmatch(dataURL)
	if match == nil {
		return "", nil, fmt.Errorf("expected a base64 data URL")
	}

	payload := dataURL[len(match[0]):]
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return match[1], data, nil
}
