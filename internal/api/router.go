package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JamesCAlger/social-media-sub002/internal/api/handler"
	"github.com/JamesCAlger/social-media-sub002/internal/api/middleware"
	"github.com/JamesCAlger/social-media-sub002/internal/config"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
	"github.com/JamesCAlger/social-media-sub002/internal/service"
)

// Services bundles everything the router needs to build handlers.
type Services struct {
	Pipeline *service.PipelineService
	Resume   *service.ResumeService
	Reviews  *service.ReviewService
	Accounts *service.AccountService
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(db *gorm.DB, svc Services, cfg *config.Config) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler(db)
	contentHandler := handler.NewContentHandler(svc.Pipeline, svc.Resume, svc.Reviews, cfg.Pipeline.AutoPublish)
	reviewHandler := handler.NewReviewHandler(svc.Reviews, svc.Pipeline, cfg.Pipeline.AutoPublish)
	operatorHandler := handler.NewOperatorHandler(svc.Pipeline, svc.Resume, repository.NewContentRepository(db))
	accountHandler := handler.NewAccountHandler(svc.Accounts)

	// Health checks
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Review decisions
		v1.POST("/webhooks/review", reviewHandler.Webhook)

		// Content lifecycle
		v1.POST("/contents", contentHandler.CreateContent)
		v1.GET("/contents", contentHandler.ListContents)
		v1.GET("/contents/:id", contentHandler.GetContent)
		v1.POST("/contents/:id/process", contentHandler.ProcessContent)
		v1.POST("/contents/:id/resume", contentHandler.ResumeContent)
		v1.POST("/contents/:id/decision", contentHandler.Decide)
		v1.POST("/contents/:id/publish", contentHandler.PublishContent)

		// Operator recovery
		v1.POST("/operator/retry-last-failed", operatorHandler.RetryLastFailed)
		v1.GET("/operator/status", operatorHandler.Status)

		// Account administration
		v1.GET("/accounts", accountHandler.ListAccounts)
		v1.POST("/accounts", accountHandler.CreateAccount)
		v1.GET("/accounts/:slug", accountHandler.GetAccount)
		v1.PUT("/accounts/:id/credential", accountHandler.SetCredential)
	}

	return r
}
