package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// TestResumePointProgression verifies that the resume point is derived from
// the latest completed log row and walks the production order.
func TestResumePointProgression(t *testing.T) {
	db := newTestDB(t)
	svc := NewResumeService(repository.NewContentRepository(db), repository.NewProcessingLogRepository(db))

	account := seedAccount(t, db, &domain.Account{Active: true})
	// Artifacts from layers that never completed must not move the resume
	// point; only the log decides.
	content := seedContent(t, db, &domain.Content{
		AccountID:      account.ID,
		Idea:           domain.JSONMap{"title": "stale"},
		ScenePrompts:   domain.StringArray{"stale scene"},
		FinalVideoPath: "/tmp/stale.mp4",
		StorageURL:     "https://cdn.example.com/stale.mp4",
	})

	testCases := []struct {
		name     string
		complete domain.Layer
		want     domain.Layer
	}{
		{name: "nothing completed", want: domain.LayerIdea},
		{name: "after idea", complete: domain.LayerIdea, want: domain.LayerPromptEngineering},
		{name: "after prompts", complete: domain.LayerPromptEngineering, want: domain.LayerVideoGeneration},
		{name: "after video", complete: domain.LayerVideoGeneration, want: domain.LayerComposition},
		{name: "after composition", complete: domain.LayerComposition, want: domain.LayerReview},
		{name: "after review", complete: domain.LayerReview, want: domain.LayerDistribution},
		{name: "after distribution", complete: domain.LayerDistribution, want: domain.Layer("")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.complete != "" {
				completeLayers(t, db, content.ID, tc.complete)
			}
			got, err := svc.ResumePoint(context.Background(), content.ID)
			if err != nil {
				t.Fatalf("ResumePoint failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected resume point %q, got %q", tc.want, got)
			}
		})
	}
}

// TestReopen verifies that reopening failed content targets the status of
// the last completed layer and clears the failure reason.
func TestReopen(t *testing.T) {
	testCases := []struct {
		name       string
		completed  []domain.Layer
		wantStatus domain.ContentStatus
	}{
		{
			name:       "no completed layers",
			wantStatus: domain.ContentStatusCreated,
		},
		{
			name:       "failed after prompts",
			completed:  []domain.Layer{domain.LayerIdea, domain.LayerPromptEngineering},
			wantStatus: domain.ContentStatusPromptsReady,
		},
		{
			name:       "failed after composition",
			completed:  []domain.Layer{domain.LayerIdea, domain.LayerPromptEngineering, domain.LayerVideoGeneration, domain.LayerComposition},
			wantStatus: domain.ContentStatusComposed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			svc := NewResumeService(repository.NewContentRepository(db), repository.NewProcessingLogRepository(db))

			account := seedAccount(t, db, &domain.Account{Active: true})
			content := seedContent(t, db, &domain.Content{
				AccountID:     account.ID,
				Status:        domain.ContentStatusFailed,
				FailureReason: "provider timeout",
			})
			completeLayers(t, db, content.ID, tc.completed...)

			reopened, err := svc.Reopen(context.Background(), content.ID)
			if err != nil {
				t.Fatalf("Reopen failed: %v", err)
			}
			if reopened.Status != tc.wantStatus {
				t.Errorf("expected status %s, got %s", tc.wantStatus, reopened.Status)
			}

			stored := reloadContent(t, db, content.ID)
			if stored.Status != tc.wantStatus {
				t.Errorf("expected stored status %s, got %s", tc.wantStatus, stored.Status)
			}
			if stored.FailureReason != "" {
				t.Errorf("expected failure reason cleared, got %q", stored.FailureReason)
			}
		})
	}
}

func TestReopenRejectsNonFailedContent(t *testing.T) {
	db := newTestDB(t)
	svc := NewResumeService(repository.NewContentRepository(db), repository.NewProcessingLogRepository(db))

	account := seedAccount(t, db, &domain.Account{Active: true})
	content := seedContent(t, db, &domain.Content{AccountID: account.ID, Status: domain.ContentStatusApproved})

	_, err := svc.Reopen(context.Background(), content.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	stored := reloadContent(t, db, content.ID)
	if stored.Status != domain.ContentStatusApproved {
		t.Errorf("expected status unchanged, got %s", stored.Status)
	}
}

// TestLastFailed verifies that the most recently created failed content is
// returned, not the most recently updated one.
func TestLastFailed(t *testing.T) {
	db := newTestDB(t)
	svc := NewResumeService(repository.NewContentRepository(db), repository.NewProcessingLogRepository(db))

	if _, err := svc.LastFailed(context.Background()); err == nil {
		t.Error("expected error when nothing has failed, got nil")
	}

	account := seedAccount(t, db, &domain.Account{Active: true})
	older := seedContent(t, db, &domain.Content{
		AccountID: account.ID,
		Status:    domain.ContentStatusFailed,
		CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	newer := seedContent(t, db, &domain.Content{
		AccountID: account.ID,
		Status:    domain.ContentStatusFailed,
		CreatedAt: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC),
	})
	seedContent(t, db, &domain.Content{
		AccountID: account.ID,
		Status:    domain.ContentStatusPosted,
		CreatedAt: time.Date(2025, 5, 3, 10, 0, 0, 0, time.UTC),
	})
	seedContent(t, db, &domain.Content{
		AccountID: account.ID,
		Status:    domain.ContentStatusApproved,
		CreatedAt: time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC),
	})

	got, err := svc.LastFailed(context.Background())
	if err != nil {
		t.Fatalf("LastFailed failed: %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("expected newest failed content %s, got %s (older is %s)", newer.ID, got.ID, older.ID)
	}
}
