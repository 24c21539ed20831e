// Package apiserver provides the JSON API HTTP server implementation
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/richardjr822/food-findr/internal/infrastructure/config"
	"github.com/richardjr822/food-findr/internal/infrastructure/http/handlers"
	"github.com/richardjr822/food-findr/internal/infrastructure/http/middleware"
	"github.com/richardjr822/food-findr/internal/infrastructure/monitoring"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
)

// APIServer represents the JSON API HTTP server
type APIServer struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *chi.Mux

	generationService   inbound.GenerationService
	conversationService inbound.ConversationService
	recipeService       inbound.RecipeService
	metrics             *monitoring.MetricsCollector
}

// NewAPIServer creates a new API server instance
func NewAPIServer(
	cfg *config.Config,
	log *zap.Logger,
	generationService inbound.GenerationService,
	conversationService inbound.ConversationService,
	recipeService inbound.RecipeService,
	metrics *monitoring.MetricsCollector,
) *APIServer {
	server := &APIServer{
		config:              cfg,
		logger:              log,
		generationService:   generationService,
		conversationService: conversationService,
		recipeService:       recipeService,
		metrics:             metrics,
	}

	server.router = server.setupRoutes()
	server.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        server.router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return server
}

// setupRoutes configures the JSON API routes
func (s *APIServer) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	r.Use(s.metrics.Middleware)

	// The write timeout already bounds handlers; the model call carries its
	// own tighter deadline inside the generation service
	r.Use(chimiddleware.Timeout(s.config.Server.WriteTimeout))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.JSONOnly())

	r.Get(s.config.Monitoring.HealthCheckPath, s.handleHealthCheck)
	if s.config.Monitoring.EnableMetrics {
		r.Handle(s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *APIServer) setupAPIV1Routes(r chi.Router) {
	genH := handlers.NewGenerationAPIHandlers(s.generationService, s.metrics, s.logger)
	threadH := handlers.NewThreadAPIHandlers(s.conversationService, s.logger)
	recipeH := handlers.NewRecipeAPIHandlers(s.recipeService, s.metrics, s.logger)

	// All pipeline routes require an owner identity
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthenticateAPI(s.config.Auth.JWTSecret))

		r.Post("/generate", genH.GenerateTurn)

		r.Route("/threads", func(r chi.Router) {
			r.Get("/", threadH.ListThreads)
			r.Get("/{threadID}", threadH.GetThread)
			r.Put("/{threadID}/messages", threadH.ReplaceThread)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeH.ListSavedRecipes)
			r.Post("/save", recipeH.SaveRecipe)
			r.Post("/unsave", recipeH.UnsaveRecipe)
			r.Delete("/{recipeID}", recipeH.DeleteSavedRecipe)
		})
	})
}

// Start starts the API HTTP server
func (s *APIServer) Start() error {
	s.logger.Info("Starting JSON API server",
		zap.String("address", s.server.Addr),
	)

	return s.server.ListenAndServe()
}

// Server returns the underlying HTTP server instance
func (s *APIServer) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the API server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}

// handleHealthCheck provides health check endpoint
func (s *APIServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, `{"status":"healthy","service":"%s","version":"%s","timestamp":%d}`,
		s.config.App.Name, s.config.App.Version, time.Now().Unix())
}
