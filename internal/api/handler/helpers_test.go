package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
	"github.com/JamesCAlger/social-media-sub002/internal/service"
)

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
		t.Fatalf("failed to access sql db: %v", err)
	}
	// Each sqlite connection gets its own :memory: database, so the pool
	// must stay at a single connection.
	sqlDB.SetMaxOpenConns(1)
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// envExecutor is a scripted layer executor. It records every execution on
// the env, blocks on the layer's gate when one is set, and fails when the
// env says so.
type envExecutor struct {
	env   *testEnv
	layer domain.Layer
}

func (e *envExecutor) Layer() domain.Layer { return e.layer }

func (e *envExecutor) Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*service.LayerResult, error) {
	e.env.mu.Lock()
	e.env.executed = append(e.env.executed, e.layer)
	gate := e.env.gates[e.layer]
	err := e.env.failOn[e.layer]
	e.env.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return nil, err
}

// testEnv wires repositories, services, and handlers over an in-memory
// database with scripted executors, mirroring the production router wiring.
type testEnv struct {
	db       *gorm.DB
	contents *repository.ContentRepository
	accounts *repository.AccountRepository
	logs     *repository.ProcessingLogRepository
	posts    *repository.PlatformPostRepository

	pipeline *service.PipelineService
	resume   *service.ResumeService
	reviews  *service.ReviewService
	router   *gin.Engine

	mu       sync.Mutex
	executed []domain.Layer
	failOn   map[domain.Layer]error
	gates    map[domain.Layer]chan struct{}
}

func newTestEnv(t *testing.T, autoPublish bool) *testEnv {
	t.Helper()
	env := &testEnv{
		db:     newTestDB(t),
		failOn: make(map[domain.Layer]error),
		gates:  make(map[domain.Layer]chan struct{}),
	}
	env.contents = repository.NewContentRepository(env.db)
	env.accounts = repository.NewAccountRepository(env.db)
	env.logs = repository.NewProcessingLogRepository(env.db)
	env.posts = repository.NewPlatformPostRepository(env.db)

	runner := service.NewLayerRunner(env.contents, env.logs)
	env.resume = service.NewResumeService(env.contents, env.logs)
	env.reviews = service.NewReviewService(env.contents, nil)

	executors := make([]service.LayerExecutor, 0, len(domain.LayerOrder))
	for _, layer := range domain.LayerOrder {
		executors = append(executors, &envExecutor{env: env, layer: layer})
	}
	env.pipeline = service.NewPipelineService(
		env.contents, env.accounts, env.logs, env.posts, runner, env.resume, executors, autoPublish)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	contentHandler := NewContentHandler(env.pipeline, env.resume, env.reviews, autoPublish)
	reviewHandler := NewReviewHandler(env.reviews, env.pipeline, autoPublish)
	operatorHandler := NewOperatorHandler(env.pipeline, env.resume, env.contents)
	accountHandler := NewAccountHandler(service.NewAccountService(env.accounts))

	v1 := r.Group("/api/v1")
	v1.POST("/webhooks/review", reviewHandler.Webhook)
	v1.POST("/contents", contentHandler.CreateContent)
	v1.GET("/contents", contentHandler.ListContents)
	v1.GET("/contents/:id", contentHandler.GetContent)
	v1.POST("/contents/:id/process", contentHandler.ProcessContent)
	v1.POST("/contents/:id/resume", contentHandler.ResumeContent)
	v1.POST("/contents/:id/decision", contentHandler.Decide)
	v1.POST("/contents/:id/publish", contentHandler.PublishContent)
	v1.POST("/operator/retry-last-failed", operatorHandler.RetryLastFailed)
	v1.GET("/operator/status", operatorHandler.Status)
	v1.GET("/accounts", accountHandler.ListAccounts)
	v1.POST("/accounts", accountHandler.CreateAccount)
	v1.GET("/accounts/:slug", accountHandler.GetAccount)
	v1.PUT("/accounts/:id/credential", accountHandler.SetCredential)
	env.router = r

	return env
}

func (env *testEnv) seedAccount(t *testing.T, slug string, active bool) *domain.Account {
	t.Helper()
	account := &domain.Account{
		ID:           uuid.New().String(),
		Slug:         slug,
		DisplayName:  "Test " + slug,
		Platform:     domain.PlatformInstagram,
		ContentNiche: "urban gardening",
		Active:       true,
	}
	if err := env.db.Create(account).Error; err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	if !active {
		// The column default is true and wins over the zero value on insert.
		err := env.db.Model(&domain.Account{}).Where("id = ?", account.ID).Update("active", false).Error
		if err != nil {
			t.Fatalf("failed to deactivate account: %v", err)
		}
		account.Active = false
	}
	return account
}

func (env *testEnv) seedContent(t *testing.T, accountID string, status domain.ContentStatus) *domain.Content {
	t.Helper()
	content := &domain.Content{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Status:    status,
	}
	if err := env.db.Create(content).Error; err != nil {
		t.Fatalf("failed to seed content: %v", err)
	}
	return content
}

func (env *testEnv) ran() []domain.Layer {
	env.mu.Lock()
	defer env.mu.Unlock()
	out := make([]domain.Layer, len(env.executed))
	copy(out, env.executed)
	return out
}

func (env *testEnv) failLayer(layer domain.Layer, err error) {
	env.mu.Lock()
	defer env.mu.Unlock()
	if err == nil {
		delete(env.failOn, layer)
		return
	}
	env.failOn[layer] = err
}

// gateLayer makes the layer's executor block until the returned channel is
// closed. Used to hold a background run open while asserting on it.
func (env *testEnv) gateLayer(layer domain.Layer) chan struct{} {
	gate := make(chan struct{})
	env.mu.Lock()
	env.gates[layer] = gate
	env.mu.Unlock()
	return gate
}

func performRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// performRaw sends the body verbatim, for malformed payload cases.
func performRaw(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// waitForStatus polls until the stored content reaches the wanted status,
// failing the test when a background run does not get there in time.
func waitForStatus(t *testing.T, env *testEnv, contentID string, want domain.ContentStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		content, err := env.contents.GetByID(context.Background(), contentID)
		if err == nil && content.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	content, err := env.contents.GetByID(context.Background(), contentID)
	if err != nil {
		t.Fatalf("expected status %s, got lookup error %v", want, err)
	}
	t.Fatalf("expected status %s, got %s", want, content.Status)
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}
