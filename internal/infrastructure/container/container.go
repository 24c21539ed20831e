// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appconversation "github.com/richardjr822/food-findr/internal/application/conversation"
	"github.com/richardjr822/food-findr/internal/domain/conversation"
	"github.com/richardjr822/food-findr/internal/domain/shared"
	"github.com/richardjr822/food-findr/internal/application/generation"
	apprecipe "github.com/richardjr822/food-findr/internal/application/recipe"
	"github.com/richardjr822/food-findr/internal/infrastructure/ai/openai"
	"github.com/richardjr822/food-findr/internal/infrastructure/cache"
	"github.com/richardjr822/food-findr/internal/infrastructure/config"
	"github.com/richardjr822/food-findr/internal/infrastructure/http/apiserver"
	"github.com/richardjr822/food-findr/internal/infrastructure/monitoring"
	"github.com/richardjr822/food-findr/internal/infrastructure/persistence/database"
	gormRepo "github.com/richardjr822/food-findr/internal/infrastructure/persistence/gorm"
	"github.com/richardjr822/food-findr/internal/ports/inbound"
	"github.com/richardjr822/food-findr/internal/ports/outbound"
	"github.com/richardjr822/food-findr/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	MonitoringModule,
	RepositoryModule,
	EventModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the GORM database connection
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		db, err := database.Setup(cfg)
		if err != nil {
			return nil, err
		}

		log.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.String("database", cfg.Database.Database),
		)

		return db, nil
	},
)

// CacheModule provides caching; Redis when enabled, in-process otherwise
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, error) {
		if cfg.Redis.Enabled {
			return cache.NewRedisCache(&cfg.Redis, log)
		}
		log.Info("Redis disabled, using in-memory cache")
		return cache.NewMemoryCache(), nil
	},
)

// MonitoringModule provides the Prometheus metrics collector
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewThreadRepository,
	gormRepo.NewSavedRecipeRepository,
)

// EventModule provides event handling
var EventModule = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewEventDispatcher,
			fx.As(new(shared.EventDispatcher)),
		),
	),
	fx.Invoke(RegisterEventHandlers),
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	// Language model client
	fx.Annotate(
		func(cfg *config.Config, metrics *monitoring.MetricsCollector, log *zap.Logger) *openai.Client {
			return openai.NewClient(&cfg.AI, metrics, log)
		},
		fx.As(new(outbound.LLMService)),
	),

	// Generation service
	fx.Annotate(
		func(
			threads outbound.ThreadRepository,
			cacheRepo outbound.CacheRepository,
			events shared.EventDispatcher,
			llm outbound.LLMService,
			cfg *config.Config,
			log *zap.Logger,
		) *generation.Service {
			prompts := generation.NewPromptBuilder(cfg.Generation.CuisineDefault)
			return generation.NewService(threads, cacheRepo, events, llm, prompts, cfg.AI.RequestTimeout, log)
		},
		fx.As(new(inbound.GenerationService)),
	),

	// Conversation service
	fx.Annotate(
		appconversation.NewService,
		fx.As(new(inbound.ConversationService)),
	),

	// Recipe service
	fx.Annotate(
		apprecipe.NewService,
		fx.As(new(inbound.RecipeService)),
	),
)

// HTTPModule provides the HTTP server
var HTTPModule = fx.Provide(
	apiserver.NewAPIServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	server *apiserver.APIServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting FoodFindr application",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := server.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down FoodFindr application")

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			sqlDB, err := db.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()

			return nil
		},
	})
}

// EventDispatcher dispatches domain events to in-process handlers
type EventDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	log      *zap.Logger
}

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher(log *zap.Logger) *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]shared.EventHandler),
		log:      log,
	}
}

// Register registers an event handler
func (d *EventDispatcher) Register(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
	d.mu.Unlock()

	d.log.Debug("Registered event handler", zap.String("event", eventName))
}

// Dispatch dispatches an event to registered handlers. A failing handler is
// logged and the remaining handlers still run.
func (d *EventDispatcher) Dispatch(event shared.DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.EventName()]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		d.log.Debug("No handlers registered for event", zap.String("event", event.EventName()))
		return nil
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			d.log.Error("Failed to handle event",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}

	return nil
}

// RegisterEventHandlers wires the in-process handlers for domain events
func RegisterEventHandlers(dispatcher shared.EventDispatcher, log *zap.Logger) {
	dispatcher.Register(conversation.ThreadStartedEvent{}.EventName(), func(event shared.DomainEvent) error {
		if e, ok := event.(conversation.ThreadStartedEvent); ok {
			log.Info("Conversation thread started",
				zap.String("thread_id", e.ThreadID),
				zap.String("owner_id", e.OwnerID),
			)
		}
		return nil
	})

	dispatcher.Register(conversation.RecipeGeneratedEvent{}.EventName(), func(event shared.DomainEvent) error {
		if e, ok := event.(conversation.RecipeGeneratedEvent); ok {
			log.Info("Recipe generated",
				zap.String("thread_id", e.ThreadID),
				zap.String("message_id", e.MessageID),
				zap.String("title", e.RecipeTitle),
			)
		}
		return nil
	})
}
