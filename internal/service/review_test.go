package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
	"github.com/JamesCAlger/social-media-sub002/internal/review"
)

// telegramStub records Bot API calls made by the review flow.
type telegramStub struct {
	mu       sync.Mutex
	videos   []map[string]string
	messages []string
	answers  []string
}

func (s *telegramStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse telegram form: %v", err)
		}

		s.mu.Lock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendVideo"):
			fields := map[string]string{}
			for k := range r.PostForm {
				fields[k] = r.PostForm.Get(k)
			}
			s.videos = append(s.videos, fields)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			s.messages = append(s.messages, r.PostForm.Get("text"))
		case strings.HasSuffix(r.URL.Path, "/answerCallbackQuery"):
			s.answers = append(s.answers, r.PostForm.Get("callback_query_id"))
		}
		s.mu.Unlock()

		// resty only unmarshals bodies served with a JSON content type.
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newReviewHarness(t *testing.T, stub *telegramStub) (*ReviewService, *repository.ContentRepository, *domain.Account, *domain.Content) {
	t.Helper()

	db := newTestDB(t)
	contents := repository.NewContentRepository(db)

	var telegram *review.TelegramClient
	if stub != nil {
		srv := stub.server(t)
		telegram = review.NewTelegramClient(&review.TelegramConfig{
			BaseURL:  srv.URL,
			BotToken: "test-token",
			ChatID:   "-100200300",
		})
	}
	svc := NewReviewService(contents, telegram)

	account := seedAccount(t, db, &domain.Account{Active: true, Slug: "garden-reels"})
	content := seedContent(t, db, &domain.Content{
		AccountID:       account.ID,
		Status:          domain.ContentStatusReviewPending,
		Idea:            domain.JSONMap{"title": "Balcony harvest", "caption": "Small space, big harvest"},
		StorageURL:      "https://cdn.example.com/videos/c1/final.mp4",
		DurationSeconds: 23,
	})
	return svc, contents, account, content
}

// TestDecide verifies that decisions move review_pending content to the
// decided status and record the reviewer metadata.
func TestDecide(t *testing.T) {
	testCases := []struct {
		name     string
		decision string
		want     domain.ContentStatus
	}{
		{name: "approve", decision: "approve", want: domain.ContentStatusApproved},
		{name: "reject", decision: "reject", want: domain.ContentStatusRejected},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, contents, _, content := newReviewHarness(t, nil)

			decided, err := svc.Decide(context.Background(), content.ID, tc.decision, "alice", "looks right")
			if err != nil {
				t.Fatalf("Decide failed: %v", err)
			}
			if decided.Status != tc.want {
				t.Errorf("expected status %s, got %s", tc.want, decided.Status)
			}

			stored, err := contents.GetByID(context.Background(), content.ID)
			if err != nil {
				t.Fatalf("failed to reload content: %v", err)
			}
			if stored.Status != tc.want {
				t.Errorf("expected stored status %s, got %s", tc.want, stored.Status)
			}
			if stored.ReviewedBy != "alice" {
				t.Errorf("expected reviewer alice, got %q", stored.ReviewedBy)
			}
			if stored.ReviewNotes != "looks right" {
				t.Errorf("expected notes persisted, got %q", stored.ReviewNotes)
			}
			if stored.ReviewedAt == nil {
				t.Error("expected reviewed_at to be set")
			}
		})
	}
}

// TestDecideIdempotent verifies that a second decision for the same content
// returns ErrDecisionRecorded and leaves the first decision in place.
func TestDecideIdempotent(t *testing.T) {
	svc, contents, _, content := newReviewHarness(t, nil)

	if _, err := svc.Decide(context.Background(), content.ID, "approve", "alice", ""); err != nil {
		t.Fatalf("first decision failed: %v", err)
	}

	_, err := svc.Decide(context.Background(), content.ID, "reject", "bob", "changed my mind")
	if !errors.Is(err, domain.ErrDecisionRecorded) {
		t.Fatalf("expected ErrDecisionRecorded, got %v", err)
	}

	stored, err := contents.GetByID(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("failed to reload content: %v", err)
	}
	if stored.Status != domain.ContentStatusApproved {
		t.Errorf("expected first decision kept, got %s", stored.Status)
	}
	if stored.ReviewedBy != "alice" {
		t.Errorf("expected original reviewer kept, got %q", stored.ReviewedBy)
	}
}

func TestDecideRejectsUnknownAction(t *testing.T) {
	svc, _, _, content := newReviewHarness(t, nil)

	_, err := svc.Decide(context.Background(), content.ID, "maybe", "alice", "")
	if err == nil || !strings.Contains(err.Error(), "unknown review decision") {
		t.Errorf("expected unknown decision error, got %v", err)
	}
	if errors.Is(err, domain.ErrDecisionRecorded) {
		t.Error("expected a validation error, not ErrDecisionRecorded")
	}
}

func TestDecideOutsideReview(t *testing.T) {
	svc, contents, _, content := newReviewHarness(t, nil)
	if err := contents.UpdateFields(context.Background(), content.ID, map[string]interface{}{"status": domain.ContentStatusComposed}); err != nil {
		t.Fatalf("failed to reset status: %v", err)
	}

	_, err := svc.Decide(context.Background(), content.ID, "approve", "alice", "")
	if !errors.Is(err, domain.ErrDecisionRecorded) {
		t.Errorf("expected ErrDecisionRecorded for content outside review, got %v", err)
	}
}

// TestDecideSendsAcknowledgment verifies the best-effort chat message after
// a recorded decision.
func TestDecideSendsAcknowledgment(t *testing.T) {
	stub := &telegramStub{}
	svc, _, _, content := newReviewHarness(t, stub)

	if _, err := svc.Decide(context.Background(), content.ID, "approve", "alice", ""); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.messages) != 1 {
		t.Fatalf("expected 1 acknowledgment message, got %d", len(stub.messages))
	}
	if !strings.Contains(stub.messages[0], content.ID) {
		t.Errorf("expected acknowledgment to name the content, got %q", stub.messages[0])
	}
}

// TestSendReviewRequest verifies the review video post carries the stored
// video URL, the summary, and approve/reject actions for the content.
func TestSendReviewRequest(t *testing.T) {
	stub := &telegramStub{}
	svc, _, account, content := newReviewHarness(t, stub)

	if err := svc.SendReviewRequest(context.Background(), content, account); err != nil {
		t.Fatalf("SendReviewRequest failed: %v", err)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.videos) != 1 {
		t.Fatalf("expected 1 sendVideo call, got %d", len(stub.videos))
	}
	fields := stub.videos[0]

	if fields["chat_id"] != "-100200300" {
		t.Errorf("expected chat id forwarded, got %q", fields["chat_id"])
	}
	if fields["video"] != content.StorageURL {
		t.Errorf("expected stored video url, got %q", fields["video"])
	}
	if !strings.Contains(fields["caption"], "garden-reels") || !strings.Contains(fields["caption"], "Balcony harvest") {
		t.Errorf("expected summary with account and title, got %q", fields["caption"])
	}
	markup := fields["reply_markup"]
	if !strings.Contains(markup, review.CallbackApprove+":"+content.ID) || !strings.Contains(markup, review.CallbackReject+":"+content.ID) {
		t.Errorf("expected approve and reject callbacks for content, got %q", markup)
	}
}

func TestSendReviewRequestRequiresVideo(t *testing.T) {
	stub := &telegramStub{}
	svc, _, account, content := newReviewHarness(t, stub)
	content.StorageURL = ""

	err := svc.SendReviewRequest(context.Background(), content, account)
	if err == nil || !strings.Contains(err.Error(), "no stored video") {
		t.Errorf("expected missing video error, got %v", err)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.videos) != 0 {
		t.Errorf("expected no sendVideo call, got %d", len(stub.videos))
	}
}

// TestAcknowledgeCallback verifies button presses are answered and that a
// missing callback id or client is tolerated.
func TestAcknowledgeCallback(t *testing.T) {
	stub := &telegramStub{}
	svc, _, _, _ := newReviewHarness(t, stub)

	svc.AcknowledgeCallback(context.Background(), "cbq-123", domain.ContentStatusApproved)
	svc.AcknowledgeCallback(context.Background(), "", domain.ContentStatusApproved)

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.answers) != 1 {
		t.Fatalf("expected 1 answered callback, got %d", len(stub.answers))
	}
	if stub.answers[0] != "cbq-123" {
		t.Errorf("expected callback id forwarded, got %q", stub.answers[0])
	}
}
