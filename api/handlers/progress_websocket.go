package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/vidfetch-go/internal/app"
	"github.com/yourusername/vidfetch-go/internal/domain"
	"github.com/yourusername/vidfetch-go/internal/progress"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	frameProgress = "progress"
	frameResult   = "result"
	frameError    = "error"

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// StreamRequest is the first and only message a client sends on
// /ws/download. FormatID wins over Format when both are set.
type StreamRequest struct {
	URL      string `json:"url"`
	Format   string `json:"format,omitempty"`
	FormatID string `json:"format_id,omitempty"`
}

// StreamFrame is one server message on /ws/download
type StreamFrame struct {
	Type     string                 `json:"type"`
	Progress *progress.Snapshot     `json:"progress,omitempty"`
	Sample   *domain.ProgressSample `json:"sample,omitempty"`
	Status   string                 `json:"status,omitempty"`
	FilePath string                 `json:"file_path,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
}

// ProgressWebSocketHandler runs one download per connection and streams its
// progress
type ProgressWebSocketHandler struct {
	downloadMgr   *app.DownloadManager
	defaultFormat string
	logger        *zap.Logger
}

// NewProgressWebSocketHandler creates a new WebSocket handler
func NewProgressWebSocketHandler(downloadMgr *app.DownloadManager, defaultFormat string, log *zap.Logger) *ProgressWebSocketHandler {
	if defaultFormat == "" {
		defaultFormat = "mp4"
	}
	return &ProgressWebSocketHandler{
		downloadMgr:   downloadMgr,
		defaultFormat: defaultFormat,
		logger:        log,
	}
}

// HandleWebSocket handles GET /ws/download
func (h *ProgressWebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	var req StreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.writeFrame(conn, StreamFrame{Type: frameError, Detail: "invalid request: " + err.Error()})
		return
	}

	if !domain.IsSupportedURL(req.URL) {
		h.writeFrame(conn, StreamFrame{Type: frameError, Detail: domain.ErrUnsupportedURL.Error()})
		return
	}

	h.logger.Info("WebSocket download started",
		zap.String("url", req.URL),
		zap.String("remote_addr", c.Request.RemoteAddr))

	samples := make(chan domain.ProgressSample, 64)
	results := make(chan domain.DownloadResult, 1)

	// The transfer outlives the socket; a disconnect only stops the frames.
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		defer close(samples)
		results <- h.downloadMgr.Download(ctx, h.request(req), func(s domain.ProgressSample) {
			select {
			case samples <- s:
			default:
				// the next sample supersedes a dropped one
			}
		})
	}()

	// Drain client messages so close frames and pongs are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case s, ok := <-samples:
			if !ok {
				result := <-results
				frame := StreamFrame{Type: frameResult, Status: "success", FilePath: result.FilePath}
				if !result.OK() {
					frame.Status = "failed"
					frame.Error = result.Error
				}
				h.writeFrame(conn, frame)
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeTimeout))
				return
			}
			snapshot := progress.Describe(s)
			if err := h.writeFrame(conn, StreamFrame{Type: frameProgress, Progress: &snapshot, Sample: &s}); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}

		case <-done:
			h.logger.Info("WebSocket client left before download finished", zap.String("url", req.URL))
			return
		}
	}
}

func (h *ProgressWebSocketHandler) request(req StreamRequest) domain.DownloadRequest {
	if req.FormatID != "" {
		return domain.NewFormatIDRequest(req.URL, req.FormatID)
	}
	format := req.Format
	if format == "" {
		format = h.defaultFormat
	}
	return domain.NewContainerRequest(req.URL, format)
}

func (h *ProgressWebSocketHandler) writeFrame(conn *websocket.Conn, frame StreamFrame) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Debug("Failed to write WebSocket frame", zap.String("type", frame.Type), zap.Error(err))
		return err
	}
	return nil
}
