package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// pipelineHarness runs a PipelineService over scriptable executors that
// record execution order.
type pipelineHarness struct {
	db       *gorm.DB
	svc      *PipelineService
	reviews  *ReviewService
	contents *repository.ContentRepository
	account  *domain.Account

	mu       sync.Mutex
	executed []domain.Layer
	failOn   map[domain.Layer]error
}

func newPipelineHarness(t *testing.T, autoPublish bool) *pipelineHarness {
	t.Helper()

	db := newTestDB(t)
	contents := repository.NewContentRepository(db)
	accounts := repository.NewAccountRepository(db)
	logs := repository.NewProcessingLogRepository(db)
	posts := repository.NewPlatformPostRepository(db)

	h := &pipelineHarness{
		db:       db,
		contents: contents,
		failOn:   map[domain.Layer]error{},
	}

	executors := make([]LayerExecutor, 0, len(domain.LayerOrder))
	for _, layer := range domain.LayerOrder {
		layer := layer
		executors = append(executors, &stubExecutor{
			layer: layer,
			execute: func(ctx context.Context, c *domain.Content, a *domain.Account) (*LayerResult, error) {
				h.mu.Lock()
				h.executed = append(h.executed, layer)
				err := h.failOn[layer]
				h.mu.Unlock()
				return nil, err
			},
		})
	}

	runner := NewLayerRunner(contents, logs)
	resume := NewResumeService(contents, logs)
	h.svc = NewPipelineService(contents, accounts, logs, posts, runner, resume, executors, autoPublish)
	h.reviews = NewReviewService(contents, nil)
	h.account = seedAccount(t, db, &domain.Account{Active: true, Slug: "garden-reels"})
	return h
}

func (h *pipelineHarness) ran() []domain.Layer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Layer(nil), h.executed...)
}

func (h *pipelineHarness) failLayer(layer domain.Layer, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failOn, layer)
		return
	}
	h.failOn[layer] = err
}

func assertLayers(t *testing.T, got, want []domain.Layer) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected layers %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected layers %v, got %v", want, got)
		}
	}
}

// TestProcessRunsToReview verifies that a fresh content item walks the
// production layers in order and halts at review_pending.
func TestProcessRunsToReview(t *testing.T) {
	h := newPipelineHarness(t, true)

	content, err := h.svc.CreateContent(context.Background(), "garden-reels")
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}

	got, err := h.svc.Process(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if got.Status != domain.ContentStatusReviewPending {
		t.Errorf("expected status review_pending, got %s", got.Status)
	}

	assertLayers(t, h.ran(), []domain.Layer{
		domain.LayerIdea,
		domain.LayerPromptEngineering,
		domain.LayerVideoGeneration,
		domain.LayerComposition,
		domain.LayerReview,
	})
}

// TestProcessWaitsForDecision verifies that processing content awaiting a
// decision is a no-op rather than an error.
func TestProcessWaitsForDecision(t *testing.T) {
	h := newPipelineHarness(t, true)

	content, err := h.svc.CreateContent(context.Background(), "garden-reels")
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}
	if _, err := h.svc.Process(context.Background(), content.ID); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	before := len(h.ran())

	got, err := h.svc.Process(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("expected waiting run to succeed, got %v", err)
	}
	if got.Status != domain.ContentStatusReviewPending {
		t.Errorf("expected status review_pending, got %s", got.Status)
	}
	if after := len(h.ran()); after != before {
		t.Errorf("expected no layers executed while waiting, got %d more", after-before)
	}
}

// TestProcessPublishesAfterApproval verifies that an approved item continues
// into distribution when auto publish is on.
func TestProcessPublishesAfterApproval(t *testing.T) {
	h := newPipelineHarness(t, true)

	content, err := h.svc.CreateContent(context.Background(), "garden-reels")
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}
	if _, err := h.svc.Process(context.Background(), content.ID); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if _, err := h.reviews.Decide(context.Background(), content.ID, "approve", "alice", ""); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	got, err := h.svc.Process(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("Process after approval failed: %v", err)
	}
	if got.Status != domain.ContentStatusPosted {
		t.Errorf("expected status posted, got %s", got.Status)
	}

	ran := h.ran()
	if len(ran) == 0 || ran[len(ran)-1] != domain.LayerDistribution {
		t.Errorf("expected distribution executed last, got %v", ran)
	}
}

// TestProcessStopsBeforeDistribution verifies that approval does not reach
// distribution when auto publish is off.
func TestProcessStopsBeforeDistribution(t *testing.T) {
	h := newPipelineHarness(t, false)

	content, err := h.svc.CreateContent(context.Background(), "garden-reels")
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}
	if _, err := h.svc.Process(context.Background(), content.ID); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if _, err := h.reviews.Decide(context.Background(), content.ID, "approve", "alice", ""); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	got, err := h.svc.Process(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("Process after approval failed: %v", err)
	}
	if got.Status != domain.ContentStatusApproved {
		t.Errorf("expected status approved, got %s", got.Status)
	}
	for _, layer := range h.ran() {
		if layer == domain.LayerDistribution {
			t.Error("expected distribution to be skipped with auto publish off")
		}
	}
}

// TestProcessFailedContent verifies that failed content must be reopened
// before it can be processed again, and that Retry resumes at the layer
// that failed rather than from the start.
func TestProcessFailedContent(t *testing.T) {
	h := newPipelineHarness(t, true)
	h.failLayer(domain.LayerVideoGeneration, fmt.Errorf("render provider unavailable"))

	content, err := h.svc.CreateContent(context.Background(), "garden-reels")
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}

	_, err = h.svc.Process(context.Background(), content.ID)
	if !errors.Is(err, domain.ErrStageExecution) {
		t.Fatalf("expected ErrStageExecution, got %v", err)
	}
	stored := reloadContent(t, h.db, content.ID)
	if stored.Status != domain.ContentStatusFailed {
		t.Fatalf("expected status failed, got %s", stored.Status)
	}

	_, err = h.svc.Process(context.Background(), content.ID)
	if err == nil || !strings.Contains(err.Error(), "reopen it before processing") {
		t.Fatalf("expected reopen guard error, got %v", err)
	}

	h.failLayer(domain.LayerVideoGeneration, nil)
	got, err := h.svc.Retry(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if got.Status != domain.ContentStatusReviewPending {
		t.Errorf("expected status review_pending after retry, got %s", got.Status)
	}

	assertLayers(t, h.ran(), []domain.Layer{
		domain.LayerIdea,
		domain.LayerPromptEngineering,
		domain.LayerVideoGeneration,
		domain.LayerVideoGeneration,
		domain.LayerComposition,
		domain.LayerReview,
	})
}

func TestRetryLastFailedWithoutFailures(t *testing.T) {
	h := newPipelineHarness(t, true)

	_, err := h.svc.RetryLastFailed(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no failed content to retry") {
		t.Errorf("expected no failed content error, got %v", err)
	}
}

// TestProcessRunGuard verifies that only one run per content item is allowed
// at a time.
func TestProcessRunGuard(t *testing.T) {
	h := newPipelineHarness(t, true)

	content, err := h.svc.CreateContent(context.Background(), "garden-reels")
	if err != nil {
		t.Fatalf("CreateContent failed: %v", err)
	}

	h.svc.running.Store(content.ID, struct{}{})
	defer h.svc.running.Delete(content.ID)

	if !h.svc.Running(content.ID) {
		t.Error("expected Running to report the held guard")
	}

	_, err = h.svc.Process(context.Background(), content.ID)
	if err == nil || !strings.Contains(err.Error(), "already being processed") {
		t.Errorf("expected run guard error, got %v", err)
	}
}

func TestCreateContentInactiveAccount(t *testing.T) {
	h := newPipelineHarness(t, true)
	seedAccount(t, h.db, &domain.Account{Slug: "dormant", Active: false})

	_, err := h.svc.CreateContent(context.Background(), "dormant")
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}
}

// TestPublishGates verifies the on-demand publish preconditions.
func TestPublishGates(t *testing.T) {
	t.Run("requires approval", func(t *testing.T) {
		h := newPipelineHarness(t, false)
		content := seedContent(t, h.db, &domain.Content{AccountID: h.account.ID, Status: domain.ContentStatusComposed})

		_, err := h.svc.Publish(context.Background(), content.ID)
		if !errors.Is(err, domain.ErrNotApproved) {
			t.Errorf("expected ErrNotApproved, got %v", err)
		}
	})

	t.Run("posted is a no-op", func(t *testing.T) {
		h := newPipelineHarness(t, false)
		content := seedContent(t, h.db, &domain.Content{AccountID: h.account.ID, Status: domain.ContentStatusPosted})

		got, err := h.svc.Publish(context.Background(), content.ID)
		if err != nil {
			t.Fatalf("expected no-op publish, got %v", err)
		}
		if got.Status != domain.ContentStatusPosted {
			t.Errorf("expected status posted, got %s", got.Status)
		}
		if len(h.ran()) != 0 {
			t.Errorf("expected no layers executed, got %v", h.ran())
		}
	})

	t.Run("inactive account", func(t *testing.T) {
		h := newPipelineHarness(t, false)
		dormant := seedAccount(t, h.db, &domain.Account{Slug: "dormant", Active: false})
		content := seedContent(t, h.db, &domain.Content{AccountID: dormant.ID, Status: domain.ContentStatusApproved})

		_, err := h.svc.Publish(context.Background(), content.ID)
		if !errors.Is(err, domain.ErrAccountInactive) {
			t.Errorf("expected ErrAccountInactive, got %v", err)
		}
	})

	t.Run("runs distribution when approved", func(t *testing.T) {
		h := newPipelineHarness(t, false)
		content := seedContent(t, h.db, &domain.Content{AccountID: h.account.ID, Status: domain.ContentStatusApproved})

		got, err := h.svc.Publish(context.Background(), content.ID)
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if got.Status != domain.ContentStatusPosted {
			t.Errorf("expected status posted, got %s", got.Status)
		}
		assertLayers(t, h.ran(), []domain.Layer{domain.LayerDistribution})
	})
}

// TestProcessInactiveAccountBeforeDistribution verifies that an approved
// item under a deactivated account stops at the distribution gate.
func TestProcessInactiveAccountBeforeDistribution(t *testing.T) {
	h := newPipelineHarness(t, true)
	dormant := seedAccount(t, h.db, &domain.Account{Slug: "dormant", Active: false})
	content := seedContent(t, h.db, &domain.Content{AccountID: dormant.ID, Status: domain.ContentStatusApproved})
	completeLayers(t, h.db, content.ID,
		domain.LayerIdea,
		domain.LayerPromptEngineering,
		domain.LayerVideoGeneration,
		domain.LayerComposition,
		domain.LayerReview,
	)

	_, err := h.svc.Process(context.Background(), content.ID)
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}

	stored := reloadContent(t, h.db, content.ID)
	if stored.Status != domain.ContentStatusApproved {
		t.Errorf("expected status unchanged, got %s", stored.Status)
	}
}
