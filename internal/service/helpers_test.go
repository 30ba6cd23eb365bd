package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// newTestDB opens an in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access test database: %v", err)
	}
	// Each sqlite connection gets its own :memory: database, so the pool
	// must stay at a single connection.
	sqlDB.SetMaxOpenConns(1)

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// seedAccount inserts an account, filling in an ID and slug when missing.
func seedAccount(t *testing.T, db *gorm.DB, account *domain.Account) *domain.Account {
	t.Helper()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Slug == "" {
		account.Slug = "acct-" + account.ID[:8]
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	if !account.Active {
		// The column default is true and wins over the zero value on insert.
		if err := db.Model(&domain.Account{}).Where("id = ?", account.ID).Update("active", false).Error; err != nil {
			t.Fatalf("failed to deactivate seeded account: %v", err)
		}
	}
	return account
}

// seedContent inserts a content row, filling in an ID when missing.
func seedContent(t *testing.T, db *gorm.DB, content *domain.Content) *domain.Content {
	t.Helper()

	if content.ID == "" {
		content.ID = uuid.New().String()
	}
	if content.Status == "" {
		content.Status = domain.ContentStatusCreated
	}
	if err := db.Create(content).Error; err != nil {
		t.Fatalf("failed to seed content: %v", err)
	}
	return content
}

// completeLayers appends and completes one log row per given layer, in order.
func completeLayers(t *testing.T, db *gorm.DB, contentID string, layers ...domain.Layer) {
	t.Helper()

	logs := repository.NewProcessingLogRepository(db)
	for _, layer := range layers {
		row, err := logs.Append(context.Background(), contentID, layer)
		if err != nil {
			t.Fatalf("failed to append log for %s: %v", layer, err)
		}
		if err := logs.Complete(context.Background(), row.ID); err != nil {
			t.Fatalf("failed to complete log for %s: %v", layer, err)
		}
	}
}

func reloadContent(t *testing.T, db *gorm.DB, id string) *domain.Content {
	t.Helper()

	content, err := repository.NewContentRepository(db).GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to reload content %s: %v", id, err)
	}
	return content
}

func timePtr(ts time.Time) *time.Time {
	return &ts
}

// stubExecutor is a LayerExecutor with scriptable behavior for tests.
type stubExecutor struct {
	layer   domain.Layer
	execute func(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error)
}

func (s *stubExecutor) Layer() domain.Layer { return s.layer }

func (s *stubExecutor) Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error) {
	if s.execute == nil {
		return nil, nil
	}
	return s.execute(ctx, content, account)
}
