// Package server is the MyShop storefront API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/myshop-dev/myshop/internal/auth"
	"github.com/myshop-dev/myshop/internal/config"
	"github.com/myshop-dev/myshop/internal/models"
	"github.com/myshop-dev/myshop/internal/moderation"
	"github.com/myshop-dev/myshop/internal/seed"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	tokens    *auth.Tokens
	moderator *moderation.Moderator
	scheduler *cron.Cron
	version   string
}

// New opens the database, applies seed data and creates a server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := models.Open(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	if err := applySeed(db, cfg, zlog); err != nil {
		return nil, err
	}

	return NewWithDB(cfg, db, zlog, version)
}

// NewWithDB creates a server on an already migrated database
func NewWithDB(cfg *config.Config, db *gorm.DB, zlog zerolog.Logger, version string) (*Server, error) {
	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := corsConfig(cfg.Server.CORSOrigins).Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS origins %v: %w", cfg.Server.CORSOrigins, err)
	}

	moderator := moderation.New(db, zlog)

	var scheduler *cron.Cron
	if cfg.Moderation.Schedule != "" {
		scheduler, err = moderator.Scheduler(cfg.Moderation.Schedule)
		if err != nil {
			return nil, err
		}
	}

	server := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		validator: newValidator(),
		tokens:    tokens,
		moderator: moderator,
		scheduler: scheduler,
		version:   version,
	}

	server.setupRouter()

	return server, nil
}

func applySeed(db *gorm.DB, cfg *config.Config, zlog zerolog.Logger) error {
	if cfg.Seed.File != "" {
		f, err := seed.Load(cfg.Seed.File)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(db, f, zlog); err != nil {
			return err
		}
	}

	if cfg.Seed.AdminEmail != "" {
		created, err := seed.Admin(db, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			zlog.Info().Str("email", cfg.Seed.AdminEmail).Msg("Admin account created")
		}
	}
	return nil
}

// newValidator registers the custom validators used by request bodies
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	validate.RegisterValidation("alphanumdash", func(fl validator.FieldLevel) bool {
		// Allow alphanumeric, hyphens, and underscores only
		value := fl.Field().String()
		for _, char := range value {
			if !((char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9') ||
				char == '-' ||
				char == '_') {
				return false
			}
		}
		return true
	})

	return validate
}

// corsConfig allows the storefront front ends in origins. cors.New panics on
// an invalid config, so NewWithDB validates it first.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(corsConfig(s.config.Server.CORSOrigins)))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Uploaded banner images
	s.router.Static("/uploads", s.config.Storage.UploadDir)

	api := s.router.Group("/api")

	// Public auth endpoints (no auth required)
	api.POST("/users/login", s.login)
	api.POST("/users/register", s.register)

	// Authenticated API routes (JWT required)
	authed := api.Group("")
	authed.Use(JWTAuthMiddleware(s.db, s.tokens, s.logger))
	{
		authed.GET("/users/me", s.getCurrentUser)

		authed.GET("/products", s.listProducts)
		authed.GET("/products/:id", s.getProduct)
		authed.GET("/reviews/:id", s.listProductReviews)
		authed.GET("/banners", s.listBanners)

		authed.POST("/reviews", RequireRole(s.logger, auth.RoleUser), s.createReview)

		admin := authed.Group("")
		admin.Use(RequireRole(s.logger, auth.RoleAdmin))
		{
			admin.POST("/products", s.createProduct)
			admin.PUT("/products/:id", s.updateProduct)
			admin.DELETE("/products/:id", s.deleteProduct)
			admin.DELETE("/reviews/:id", s.deleteReview)
			admin.GET("/admin/fake-reviews", s.listFakeReviews)
			admin.POST("/admin/moderation/sweep", s.runSweep)
			admin.POST("/banners", s.uploadBanner)
		}
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetHeader("X-Request-ID")).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	status := "online"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   "myshop-api",
		"version":   s.version,
	})
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and the moderation scheduler, and blocks
// until SIGINT or SIGTERM
func (s *Server) Start() error {
	addr := ":" + s.config.Server.Port

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if s.scheduler != nil {
		s.scheduler.Start()
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		s.close()
		return err
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.close()
	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// close stops the scheduler and flushes the database
func (s *Server) close() {
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
	}

	s.logger.Info().Msg("Closing database connection...")
	if err := models.Close(s.db); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	}
}
