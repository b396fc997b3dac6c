package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/video-summarizer/internal/domain/summarizer"
	"github.com/yanqian/video-summarizer/internal/domain/video"
	"github.com/yanqian/video-summarizer/pkg/metrics"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	videoSvc      video.Service
	summarizerSvc summarizer.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(videoSvc video.Service, summarizerSvc summarizer.Service, logger *slog.Logger) *Handler {
	return &Handler{
		videoSvc:      videoSvc,
		summarizerSvc: summarizerSvc,
		logger:        logger.With("component", "http.handler"),
	}
}

// TextRequest carries a raw transcript.
type TextRequest struct {
	Text string `json:"text"`
}

// TextResponse is the summary of a raw transcript.
type TextResponse struct {
	Summary    []string            `json:"summary"`
	Attempts   int                 `json:"attempts"`
	Chunks     int                 `json:"chunks"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// SummarizeVideo downloads, summarizes and stores one video.
func (h *Handler) SummarizeVideo(c *gin.Context) {
	var req video.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.videoSvc.Summarize(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetVideoSummary returns a stored summary.
func (h *Handler) GetVideoSummary(c *gin.Context) {
	resp, err := h.videoSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EnqueueVideoSummaries schedules background summaries.
func (h *Handler) EnqueueVideoSummaries(c *gin.Context) {
	var req video.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.videoSvc.Enqueue(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// SummarizeText runs the chunked summarizer on a caller supplied transcript.
func (h *Handler) SummarizeText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	res, err := h.summarizerSvc.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	resp := TextResponse{Summary: res.Summary, Attempts: res.Attempts, Chunks: res.Chunks}
	if !res.Usage.IsZero() {
		usage := res.Usage
		resp.TokenUsage = &usage
	}
	c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
