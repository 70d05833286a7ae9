package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/vidfetch-go/internal/domain"
)

// VideoHandler serves files from the output directory
type VideoHandler struct {
	outputDir string
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(outputDir string) *VideoHandler {
	return &VideoHandler{outputDir: outputDir}
}

// GetVideo handles GET /video/:video_name
func (h *VideoHandler) GetVideo(c *gin.Context) {
	path, err := h.resolve(c.Param("video_name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "video not found"})
		return
	}

	c.File(path)
}

// resolve maps a name to a regular file directly inside outputDir
func (h *VideoHandler) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return "", domain.ErrNotFound
	}

	path := filepath.Join(h.outputDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", domain.ErrNotFound
	}

	return path, nil
}
