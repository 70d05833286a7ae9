package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/vidfetch-go/internal/app"
	"github.com/yourusername/vidfetch-go/internal/domain"
)

// DownloadHandler handles download and format-listing requests
type DownloadHandler struct {
	downloadMgr   *app.DownloadManager
	defaultFormat string
	logger        *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(downloadMgr *app.DownloadManager, defaultFormat string, logger *zap.Logger) *DownloadHandler {
	if defaultFormat == "" {
		defaultFormat = "mp4"
	}
	return &DownloadHandler{
		downloadMgr:   downloadMgr,
		defaultFormat: defaultFormat,
		logger:        logger,
	}
}

// DownloadVideoRequest is the body of POST /download/
type DownloadVideoRequest struct {
	URL    string `json:"url" binding:"required"`
	Format string `json:"format"`
}

// DownloadVideoResponse is returned when a download succeeds
type DownloadVideoResponse struct {
	Status   string `json:"status"`
	FilePath string `json:"file_path"`
}

// FormatResponse is one entry of GET /formats
type FormatResponse struct {
	domain.FormatDescriptor
	Label string `json:"label"`
}

// DownloadVideo handles POST /download/. The request blocks until the
// engine finishes; a client that disconnects does not cancel the transfer.
func (h *DownloadHandler) DownloadVideo(c *gin.Context) {
	var req DownloadVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body: " + err.Error()})
		return
	}

	if !domain.IsSupportedURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": domain.ErrUnsupportedURL.Error()})
		return
	}

	format := req.Format
	if format == "" {
		format = h.defaultFormat
	}

	ctx := context.WithoutCancel(c.Request.Context())
	result := h.downloadMgr.Download(ctx, domain.NewContainerRequest(req.URL, format), nil)
	if !result.OK() {
		h.logger.Warn("Download request failed",
			zap.String("url", req.URL),
			zap.Error(result.Err()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail": "failed to download video",
			"error":  result.Error,
		})
		return
	}

	c.JSON(http.StatusOK, DownloadVideoResponse{
		Status:   "success",
		FilePath: result.FilePath,
	})
}

// ListFormats handles GET /formats?url=
func (h *DownloadHandler) ListFormats(c *gin.Context) {
	url := c.Query("url")
	parsed, ok := domain.ParseURL(url)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": domain.ErrUnsupportedURL.Error()})
		return
	}

	formats, err := h.downloadMgr.ListFormats(c.Request.Context(), url)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"detail": "failed to list formats",
			"error":  err.Error(),
		})
		return
	}

	response := make([]FormatResponse, 0, len(formats))
	for _, f := range formats {
		response = append(response, FormatResponse{FormatDescriptor: f, Label: f.Label()})
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      url,
		"platform": parsed.Platform,
		"count":    len(response),
		"formats":  response,
	})
}
