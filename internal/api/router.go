// Package api exposes the HTTP interface of the CreatorPulse service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jhawaritvik/CreatorPulse/internal/delivery"
	"github.com/jhawaritvik/CreatorPulse/internal/domain"
	"github.com/jhawaritvik/CreatorPulse/internal/logger"
	"github.com/jhawaritvik/CreatorPulse/internal/mailer"
)

const (
	healthCheckTimeout   = 2 * time.Second
	healthStatusHealthy  = "healthy"
	healthStatusDegraded = "degraded"
	serviceVersion       = "1.0.0"
)

// DraftGenerator runs the content pipeline and persists a draft.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, userID, title string) (*domain.Newsletter, error)
	RegenerateDraft(ctx context.Context, userID string, id uuid.UUID) (*domain.Newsletter, error)
}

// Sender performs send-newsletter operations.
type Sender interface {
	Send(ctx context.Context, req delivery.SendRequest) (*delivery.SendOutcome, error)
}

// NewsletterReader lists newsletters for the API.
type NewsletterReader interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Newsletter, error)
	ListScheduledByUser(ctx context.Context, userID string) ([]domain.Newsletter, error)
}

// ClientReader lists clients for the API.
type ClientReader interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Client, error)
}

// SourceReader reads sources and their content.
type SourceReader interface {
	ListActiveByUser(ctx context.Context, userID string) ([]domain.Source, error)
	GetOwned(ctx context.Context, id uuid.UUID, userID string) (*domain.Source, error)
}

// ContentFetcher previews one source's content.
type ContentFetcher interface {
	FetchSource(ctx context.Context, src domain.Source) ([]domain.Item, error)
}

// Router holds the API dependencies.
type Router struct {
	generator   DraftGenerator
	sender      Sender
	newsletters NewsletterReader
	clients     ClientReader
	sources     SourceReader
	content     ContentFetcher
	mailer      mailer.Mailer
	db          *sqlx.DB
	redisClient *redis.Client
	logger      logger.Logger
	debug       bool
}

// NewRouter creates a new API router.
func NewRouter(
	generator DraftGenerator,
	sender Sender,
	newsletters NewsletterReader,
	clients ClientReader,
	sources SourceReader,
	content ContentFetcher,
	m mailer.Mailer,
	db *sqlx.DB,
	redisClient *redis.Client,
	log logger.Logger,
	debug bool,
) *Router {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Router{
		generator:   generator,
		sender:      sender,
		newsletters: newsletters,
		clients:     clients,
		sources:     sources,
		content:     content,
		mailer:      m,
		db:          db,
		redisClient: redisClient,
		logger:      log,
		debug:       debug,
	}
}

// SetupRoutes builds the gin engine with all routes registered.
func (r *Router) SetupRoutes() *gin.Engine {
	if !r.debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(r.logger))

	router.GET("/health", r.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(requireUser())

	api.POST("/generate-draft", r.generateDraft)
	api.POST("/newsletters/:id/regenerate", r.regenerateDraft)
	api.POST("/send-newsletter", r.sendNewsletter)
	api.POST("/test-email", r.testEmail)
	api.GET("/newsletters", r.listNewsletters)
	api.GET("/scheduled-newsletters", r.listScheduledNewsletters)
	api.GET("/sources", r.listSources)
	api.GET("/sources/:id/content", r.getSourceContent)
	api.GET("/clients", r.listClients)

	return router
}

// healthCheck reports service, database and redis health.
func (r *Router) healthCheck(c *gin.Context) {
	health := gin.H{
		"status":  healthStatusHealthy,
		"service": "creatorpulse",
		"version": serviceVersion,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	dbConnected := true
	if r.db == nil || r.db.PingContext(ctx) != nil {
		dbConnected = false
		health["status"] = healthStatusDegraded
	}
	health["database"] = gin.H{"connected": dbConnected}

	if r.redisClient != nil {
		redisConnected := r.redisClient.Ping(ctx).Err() == nil
		health["redis"] = gin.H{"connected": redisConnected}
		if !redisConnected && health["status"] == healthStatusHealthy {
			health["status"] = healthStatusDegraded
		}
	}

	c.JSON(http.StatusOK, health)
}
