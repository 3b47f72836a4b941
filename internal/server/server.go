// Package server
//
// @title Engaged API
// @version 1.0
// @description Participant gateway with dual-mode authentication
// @host localhost:4000
// @BasePath /
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/engaged-dev/engaged/internal/auth"
	"github.com/engaged-dev/engaged/internal/config"
	"github.com/engaged-dev/engaged/internal/models"
	"github.com/engaged-dev/engaged/internal/participants"
	"github.com/engaged-dev/engaged/internal/relay"
)

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	db           *gorm.DB
	config       *config.Config
	logger       zerolog.Logger
	store        *auth.Store
	codec        *auth.Codec
	resolver     *auth.Resolver
	participants *participants.Service
	relay        *relay.Service
	version      string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := models.SeedDemoParticipant(db); err != nil {
		return nil, fmt.Errorf("failed to seed demo participant: %w", err)
	}

	codec := auth.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// The store owns its sweep lifecycle: started here, stopped on shutdown
	store := auth.NewStore(cfg.Auth.SessionTTL, cfg.Auth.SweepSchedule, zlog)
	if err := store.Start(); err != nil {
		return nil, err
	}

	// Token before cookie: a bearer-token client must not be
	// misauthenticated by a stale session cookie in the same browser
	resolver := auth.NewResolver(
		auth.NewTokenAuthenticator(codec),
		auth.NewCookieAuthenticator(store, sessionCookieName),
	)

	server := &Server{
		db:           db,
		config:       cfg,
		logger:       zlog,
		store:        store,
		codec:        codec,
		resolver:     resolver,
		participants: participants.NewService(db, zlog),
		relay:        relay.NewService(cfg, zlog),
		version:      version,
	}

	server.setupRouter()

	return server, nil
}

// initDatabase opens the sqlite database used by the participant directory
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=1",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.config.Client.Origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Credential issuance and session lifecycle (no auth required)
	authRoutes := s.router.Group("/auth")
	{
		authRoutes.POST("/sign-in-cookie", s.signInWithCookie)
		authRoutes.POST("/sign-in-token", s.signInWithToken)
		authRoutes.GET("/session", s.getSession)
		authRoutes.POST("/sign-out", s.signOut)
	}

	// Protected resource: all auth decisions happen in the middleware
	s.router.GET("/participant-summary", s.authMiddleware(), s.getParticipantSummary)

	// Relay endpoints for the chat widget and workflow automation
	s.router.GET("/bot/token", s.getBotToken)
	s.router.POST("/connect", s.connectWorkflow)
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "engaged-api",
		"version":   s.version,
	})
}

// Close stops the sweep scheduler and closes the database
func (s *Server) Close() {
	s.store.Stop()
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.Close()
	s.logger.Info().Msg("Server shutdown complete")

	return nil
}
