package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// TestLayerRunnerSuccess verifies that a successful layer run writes the
// artifacts and target status on the content and completes the log row.
func TestLayerRunnerSuccess(t *testing.T) {
	db := newTestDB(t)
	contents := repository.NewContentRepository(db)
	logs := repository.NewProcessingLogRepository(db)
	runner := NewLayerRunner(contents, logs)

	account := seedAccount(t, db, &domain.Account{Active: true})
	content := seedContent(t, db, &domain.Content{AccountID: account.ID, Status: domain.ContentStatusCreated})

	exec := &stubExecutor{
		layer: domain.LayerIdea,
		execute: func(ctx context.Context, c *domain.Content, a *domain.Account) (*LayerResult, error) {
			return &LayerResult{Fields: map[string]interface{}{
				"idea": domain.JSONMap{"concept": "tiny balcony garden tour", "caption": "small space, big harvest"},
			}}, nil
		},
	}

	if err := runner.Run(context.Background(), content, account, exec); err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if content.Status != domain.ContentStatusIdeaReady {
		t.Errorf("expected in-memory status idea_ready, got %s", content.Status)
	}

	stored := reloadContent(t, db, content.ID)
	if stored.Status != domain.ContentStatusIdeaReady {
		t.Errorf("expected stored status idea_ready, got %s", stored.Status)
	}
	if stored.Idea["concept"] != "tiny balcony garden tour" {
		t.Errorf("expected idea artifact persisted, got %v", stored.Idea)
	}

	last, err := logs.LatestCompleted(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("failed to read latest completed log: %v", err)
	}
	if last == nil {
		t.Fatal("expected a completed log row, got none")
	}
	if last.Layer != domain.LayerIdea {
		t.Errorf("expected completed layer idea, got %s", last.Layer)
	}
	if last.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

// TestLayerRunnerFailure verifies that an executor error moves the content
// to failed with the reason recorded on both the content and the log row.
func TestLayerRunnerFailure(t *testing.T) {
	db := newTestDB(t)
	contents := repository.NewContentRepository(db)
	logs := repository.NewProcessingLogRepository(db)
	runner := NewLayerRunner(contents, logs)

	account := seedAccount(t, db, &domain.Account{Active: true})
	content := seedContent(t, db, &domain.Content{AccountID: account.ID, Status: domain.ContentStatusPromptsReady})

	exec := &stubExecutor{
		layer: domain.LayerVideoGeneration,
		execute: func(ctx context.Context, c *domain.Content, a *domain.Account) (*LayerResult, error) {
			return nil, fmt.Errorf("render provider rejected prompt 2")
		},
	}

	err := runner.Run(context.Background(), content, account, exec)
	if !errors.Is(err, domain.ErrStageExecution) {
		t.Fatalf("expected ErrStageExecution, got %v", err)
	}

	stored := reloadContent(t, db, content.ID)
	if stored.Status != domain.ContentStatusFailed {
		t.Errorf("expected status failed, got %s", stored.Status)
	}
	if stored.FailureReason != "render provider rejected prompt 2" {
		t.Errorf("expected failure reason persisted, got %q", stored.FailureReason)
	}

	var rows []domain.ProcessingLog
	if err := db.Where("content_id = ?", content.ID).Find(&rows).Error; err != nil {
		t.Fatalf("failed to list log rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(rows))
	}
	if rows[0].Status != domain.LogStatusFailed {
		t.Errorf("expected log status failed, got %s", rows[0].Status)
	}
	if !strings.Contains(rows[0].Error, "rejected prompt 2") {
		t.Errorf("expected log error detail, got %q", rows[0].Error)
	}

	if completed, _ := logs.LatestCompleted(context.Background(), content.ID); completed != nil {
		t.Errorf("expected no completed log, got layer %s", completed.Layer)
	}
}

// TestLayerRunnerCrashRecovery verifies that re-running a layer whose status
// write landed but whose log row never completed only re-applies artifacts.
func TestLayerRunnerCrashRecovery(t *testing.T) {
	db := newTestDB(t)
	contents := repository.NewContentRepository(db)
	logs := repository.NewProcessingLogRepository(db)
	runner := NewLayerRunner(contents, logs)

	account := seedAccount(t, db, &domain.Account{Active: true})
	// The content already sits at the layer's target status, as after a
	// crash between the content write and the log completion.
	content := seedContent(t, db, &domain.Content{AccountID: account.ID, Status: domain.ContentStatusIdeaReady})

	exec := &stubExecutor{
		layer: domain.LayerIdea,
		execute: func(ctx context.Context, c *domain.Content, a *domain.Account) (*LayerResult, error) {
			return &LayerResult{Fields: map[string]interface{}{
				"idea": domain.JSONMap{"concept": "second attempt", "caption": "same layer, fresh idea"},
			}}, nil
		},
	}

	if err := runner.Run(context.Background(), content, account, exec); err != nil {
		t.Fatalf("expected re-run to succeed, got %v", err)
	}

	stored := reloadContent(t, db, content.ID)
	if stored.Status != domain.ContentStatusIdeaReady {
		t.Errorf("expected status to stay idea_ready, got %s", stored.Status)
	}
	if stored.Idea["concept"] != "second attempt" {
		t.Errorf("expected artifacts re-applied, got %v", stored.Idea)
	}

	last, err := logs.LatestCompleted(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("failed to read latest completed log: %v", err)
	}
	if last == nil || last.Layer != domain.LayerIdea {
		t.Fatalf("expected completed idea log after recovery, got %+v", last)
	}
}

func TestLayerRunnerUnknownLayer(t *testing.T) {
	db := newTestDB(t)
	runner := NewLayerRunner(repository.NewContentRepository(db), repository.NewProcessingLogRepository(db))

	account := seedAccount(t, db, &domain.Account{Active: true})
	content := seedContent(t, db, &domain.Content{AccountID: account.ID})

	err := runner.Run(context.Background(), content, account, &stubExecutor{layer: domain.Layer("mastering")})
	if err == nil || !strings.Contains(err.Error(), "unknown layer") {
		t.Errorf("expected unknown layer error, got %v", err)
	}
}
