package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/service"
)

// ReviewHandler handles review decisions arriving over the webhook.
type ReviewHandler struct {
	reviews     *service.ReviewService
	pipeline    *service.PipelineService
	autoPublish bool
}

// NewReviewHandler creates a new review webhook handler.
// Parameters:
//   - reviews: review service instance.
//   - pipeline: pipeline service instance, used to kick distribution.
//   - autoPublish: whether an approval triggers distribution immediately.
// Returns:
//   - *ReviewHandler: initialized handler.
func NewReviewHandler(reviews *service.ReviewService, pipeline *service.PipelineService, autoPublish bool) *ReviewHandler {
	return &ReviewHandler{
		reviews:     reviews,
		pipeline:    pipeline,
		autoPublish: autoPublish,
	}
}

// ReviewWebhookRequest represents the decision payload posted by the
// review channel bridge.
type ReviewWebhookRequest struct {
	Action     string `json:"action" binding:"required"`
	ContentID  string `json:"content_id" binding:"required"`
	Reviewer   string `json:"reviewer"`
	Notes      string `json:"notes"`
	CallbackID string `json:"callback_id"`
}

// Webhook handles POST /api/v1/webhooks/review. Deliveries are retried by
// the sender, so a decision that was already recorded answers 409 and
// changes nothing.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ReviewHandler) Webhook(c *gin.Context) {
	ctx := c.Request.Context()

	var req ReviewWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.CtxWarn(ctx, "Invalid review webhook: client_ip=%s, error=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	logger.CtxInfo(ctx, "Review decision received: content_id=%s, action=%s, reviewer=%s",
		req.ContentID, req.Action, req.Reviewer)

	content, err := h.reviews.Decide(ctx, req.ContentID, req.Action, req.Reviewer, req.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrDecisionRecorded) {
			// The button press still gets answered so the client stops waiting.
			h.reviews.AcknowledgeCallback(ctx, req.CallbackID, content.Status)
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to record decision: " + err.Error()})
		return
	}
	h.reviews.AcknowledgeCallback(ctx, req.CallbackID, content.Status)

	if content.Status == domain.ContentStatusApproved && h.autoPublish {
		go func(contentID string) {
			bg := context.Background()
			if _, err := h.pipeline.Publish(bg, contentID); err != nil {
				logger.CtxError(bg, "Publish after approval of %s failed: %v", contentID, err)
			}
		}(content.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"content_id": content.ID,
		"status":     content.Status,
	})
}
