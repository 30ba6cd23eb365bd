package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
	"github.com/JamesCAlger/social-media-sub002/internal/service"
)

// OperatorHandler handles operator recovery endpoints.
type OperatorHandler struct {
	pipeline *service.PipelineService
	resume   *service.ResumeService
	contents *repository.ContentRepository

	mu          sync.RWMutex
	lastRetryAt time.Time
	lastRetryID string
}

// NewOperatorHandler creates a new operator handler.
// Parameters:
//   - pipeline: pipeline service instance.
//   - resume: resume service instance.
//   - contents: content repository for queue counts.
// Returns:
//   - *OperatorHandler: initialized handler.
func NewOperatorHandler(pipeline *service.PipelineService, resume *service.ResumeService, contents *repository.ContentRepository) *OperatorHandler {
	return &OperatorHandler{
		pipeline: pipeline,
		resume:   resume,
		contents: contents,
	}
}

// RetryLastFailed handles POST /api/v1/operator/retry-last-failed. The
// most recently created failed content is reopened synchronously and then
// processed in the background.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *OperatorHandler) RetryLastFailed(c *gin.Context) {
	ctx := c.Request.Context()

	failed, err := h.resume.LastFailed(ctx)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No failed content to retry"})
		return
	}
	if h.pipeline.Running(failed.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Content is already being processed"})
		return
	}

	content, err := h.resume.Reopen(ctx, failed.ID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to reopen content: " + err.Error()})
		return
	}

	h.mu.Lock()
	h.lastRetryAt = time.Now()
	h.lastRetryID = content.ID
	h.mu.Unlock()

	go func(contentID string) {
		bg := context.Background()
		if _, err := h.pipeline.Process(bg, contentID); err != nil {
			logger.CtxError(bg, "Retry of %s failed: %v", contentID, err)
		}
	}(content.ID)

	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Retry started",
		"content_id": content.ID,
		"status":     content.Status,
	})
}

// Status handles GET /api/v1/operator/status. The queue counts cover the
// statuses that need operator attention: items waiting on review, items
// approved but not yet posted, and failures.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *OperatorHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	queues := gin.H{}
	for _, status := range []domain.ContentStatus{
		domain.ContentStatusReviewPending,
		domain.ContentStatusApproved,
		domain.ContentStatusFailed,
	} {
		count, err := h.contents.CountByStatus(ctx, status)
		if err != nil {
			logger.CtxWarn(ctx, "Failed to count %s content: %v", status, err)
			continue
		}
		queues[string(status)] = count
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := gin.H{"queues": queues}
	if !h.lastRetryAt.IsZero() {
		resp["last_retry_at"] = h.lastRetryAt.Format(time.RFC3339)
		resp["last_retry_content_id"] = h.lastRetryID
	}

	c.JSON(http.StatusOK, resp)
}
