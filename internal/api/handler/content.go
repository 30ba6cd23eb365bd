package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/service"
)

// ContentHandler handles content lifecycle endpoints.
type ContentHandler struct {
	pipeline *service.PipelineService
	resume   *service.ResumeService
	reviews  *service.ReviewService
	// autoPublish mirrors the pipeline setting so approvals recorded over
	// the API kick distribution without waiting for an operator.
	autoPublish bool
}

// NewContentHandler creates a new content handler.
// Parameters:
//   - pipeline: pipeline service instance.
//   - resume: resume service instance.
//   - reviews: review service instance.
//   - autoPublish: whether an approval triggers distribution immediately.
// Returns:
//   - *ContentHandler: initialized handler.
func NewContentHandler(pipeline *service.PipelineService, resume *service.ResumeService, reviews *service.ReviewService, autoPublish bool) *ContentHandler {
	return &ContentHandler{
		pipeline:    pipeline,
		resume:      resume,
		reviews:     reviews,
		autoPublish: autoPublish,
	}
}

// CreateContentRequest represents the content creation request.
type CreateContentRequest struct {
	AccountSlug string `json:"account_slug" binding:"required"`
}

// DecisionRequest represents a review decision submitted over the API.
type DecisionRequest struct {
	Action   string `json:"action" binding:"required"`
	Reviewer string `json:"reviewer"`
	Notes    string `json:"notes"`
}

// CreateContent handles POST /api/v1/contents.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	content, err := h.pipeline.CreateContent(c.Request.Context(), req.AccountSlug)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create content: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, content)
}

// GetContent handles GET /api/v1/contents/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ContentHandler) GetContent(c *gin.Context) {
	id := c.Param("id")

	content, logs, posts, err := h.pipeline.GetContent(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content": content,
		"logs":    logs,
		"posts":   posts,
	})
}

// ListContents handles GET /api/v1/contents.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ContentHandler) ListContents(c *gin.Context) {
	status := domain.ContentStatus(c.Query("status"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	contents, err := h.pipeline.ListContents(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contents: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contents": contents,
		"total":    len(contents),
	})
}

// ProcessContent handles POST /api/v1/contents/:id/process. The pipeline
// run happens in the background; the response only confirms the start.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ContentHandler) ProcessContent(c *gin.Context) {
	id := c.Param("id")

	content, _, _, err := h.pipeline.GetContent(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}
	if h.pipeline.Running(content.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Content is already being processed"})
		return
	}

	h.startRun(content.ID)
	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Processing started",
		"content_id": content.ID,
	})
}

// ResumeContent handles POST /api/v1/contents/:id/resume. Reopening is
// synchronous so state errors surface in the response; the pipeline run
// that follows happens in the background.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ContentHandler) ResumeContent(c *gin.Context) {
	id := c.Param("id")

	content, err := h.resume.Reopen(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Failed to reopen content: " + err.Error()})
		return
	}

	h.startRun(content.ID)
	c.JSON(http.StatusAccepted, gin.H{
		"message":    "Content reopened, processing started",
		"content_id": content.ID,
		"status":     content.Status,
	})
}

// Decide handles POST /api/v1/contents/:id/decision for manual operator
// decisions. Semantics match the review webhook.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ContentHandler) Decide(c *gin.Context) {
	id := c.Param("id")

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	content, err := h.reviews.Decide(c.Request.Context(), id, req.Action, req.Reviewer, req.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrDecisionRecorded) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to record decision: " + err.Error()})
		return
	}

	if content.Status == domain.ContentStatusApproved && h.autoPublish {
		h.startPublish(content.ID)
	}

	c.JSON(http.StatusOK, content)
}

// PublishContent handles POST /api/v1/contents/:id/publish. Runs the
// distribution layer synchronously and returns the final content state.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ContentHandler) PublishContent(c *gin.Context) {
	id := c.Param("id")

	// Container polling can outlive the client; the publish keeps its own
	// context so a dropped connection does not abort it midway.
	content, err := h.pipeline.Publish(context.Background(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotApproved) || errors.Is(err, domain.ErrAccountInactive) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": "Publish failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, content)
}

// startRun processes content in the background, detached from the request.
func (h *ContentHandler) startRun(contentID string) {
	go func() {
		ctx := context.Background()
		if _, err := h.pipeline.Process(ctx, contentID); err != nil {
			logger.CtxError(ctx, "Background processing of %s failed: %v", contentID, err)
		}
	}()
}

func (h *ContentHandler) startPublish(contentID string) {
	go func() {
		ctx := context.Background()
		if _, err := h.pipeline.Publish(ctx, contentID); err != nil {
			logger.CtxError(ctx, "Background publish of %s failed: %v", contentID, err)
		}
	}()
}
