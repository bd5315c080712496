// Package container wires the client core with Uber FX
package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/alchemorsel/pantry/internal/application/favorites"
	"github.com/alchemorsel/pantry/internal/application/search"
	"github.com/alchemorsel/pantry/internal/application/selection"
	"github.com/alchemorsel/pantry/internal/application/session"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/events"
	"github.com/alchemorsel/pantry/internal/infrastructure/http/apiclient"
	"github.com/alchemorsel/pantry/internal/infrastructure/icons"
	"github.com/alchemorsel/pantry/internal/infrastructure/monitoring"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/memory"
	redisstore "github.com/alchemorsel/pantry/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/pantry/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/pantry/internal/infrastructure/security"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
	"github.com/alchemorsel/pantry/pkg/logger"
)

// ConfigPath is the config file the application was started with. Empty
// means the default search paths.
type ConfigPath string

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	StorageModule,
	EventModule,

	// Client modules
	ClientModule,
	StoreModule,
	HealthModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides metrics
var MonitoringModule = fx.Provide(
	monitoring.NewMetrics,
)

// Storage is the selected state store backend
type Storage struct {
	Store   outbound.StateStore
	Backend string
	Redis   redis.UniversalClient // nil unless Backend is redis
	DB      *gorm.DB              // nil unless Backend is sqlite
}

// StorageModule provides the state store selected by storage.driver
var StorageModule = fx.Provide(
	NewStorage,
	func(s *Storage) outbound.StateStore { return s.Store },
)

// NewStorage opens the configured state store backend
func NewStorage(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	storage := &Storage{Backend: cfg.Storage.Driver}

	switch cfg.Storage.Driver {
	case "sqlite":
		logLevel := gormLogger.Silent
		if cfg.App.Debug {
			logLevel = gormLogger.Info
		}
		db, err := sqlite.SetupDatabase(cfg.Storage.SQLitePath, logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		storage.DB = db
		storage.Store = sqlite.NewStateStore(db, log)
		log.Info("Using SQLite state store", zap.String("path", cfg.Storage.SQLitePath))

	case "redis":
		client, err := redisstore.NewClient(context.Background(), cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		storage.Redis = client
		storage.Store = redisstore.NewStateStore(client, cfg.Redis.KeyPrefix, log)

	default:
		storage.Store = memory.NewStateStore()
		log.Info("Using in-memory state store")
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if storage.Redis != nil {
				if err := storage.Redis.Close(); err != nil {
					log.Error("Failed to close Redis client", zap.Error(err))
				}
			}
			if storage.DB != nil {
				if sqlDB, err := storage.DB.DB(); err == nil {
					if err := sqlDB.Close(); err != nil {
						log.Error("Failed to close database connection", zap.Error(err))
					}
				}
			}
			return nil
		},
	})

	return storage, nil
}

// EventModule provides the event dispatcher
var EventModule = fx.Options(
	fx.Provide(
		events.NewDispatcher,
		func(d *events.Dispatcher) shared.EventDispatcher { return d },
	),
	fx.Invoke(RegisterEventLogging),
)

// RegisterEventLogging logs every domain event at debug level
func RegisterEventLogging(d *events.Dispatcher, log *zap.Logger) {
	d.Register(shared.AllEvents, func(ctx context.Context, event shared.DomainEvent) error {
		log.Debug("Domain event",
			zap.String("event", event.EventName()),
			zap.Time("at", event.OccurredAt()),
		)
		return nil
	})
}

// ClientModule provides the API clients
var ClientModule = fx.Provide(
	func(cfg *config.Config, metrics *monitoring.Metrics, log *zap.Logger) *apiclient.Client {
		return apiclient.New(apiclient.Options{
			AuthBaseURL:    cfg.API.AuthBaseURL,
			RecipesBaseURL: cfg.API.RecipesBaseURL,
			Timeout:        cfg.API.Timeout,
			RateLimit:      cfg.API.RateLimit,
			RateBurst:      cfg.API.RateBurst,
			UserAgent:      cfg.API.UserAgent,
			Metrics:        metrics,
		}, log)
	},
	func(c *apiclient.Client) outbound.AuthAPI { return c },
	func(c *apiclient.Client) outbound.ProfileAPI { return c },
	icons.DefaultCatalog,
	security.NewValidationService,
	func(c *apiclient.Client, tokens *session.Store, catalog *icons.Catalog, cfg *config.Config) outbound.RecipeGenerator {
		return apiclient.NewRecipeClient(c, tokens, catalog, cfg.Search.MinIngredients)
	},
)

// StoreModule provides the client stores
var StoreModule = fx.Provide(
	func(state outbound.StateStore, d shared.EventDispatcher, metrics *monitoring.Metrics, log *zap.Logger) *selection.Store {
		return selection.NewStore(state, d, metrics, log)
	},
	func(s *selection.Store) inbound.SelectionStore { return s },

	func(auth outbound.AuthAPI, profile outbound.ProfileAPI, sel *selection.Store, state outbound.StateStore, d shared.EventDispatcher, v *security.ValidationService, log *zap.Logger) *session.Store {
		return session.NewStore(auth, profile, session.Options{
			Selection: sel,
			State:     state,
			Events:    d,
			Validator: v,
		}, log)
	},
	func(s *session.Store) inbound.SessionStore { return s },

	func(generator outbound.RecipeGenerator, sel *selection.Store, sess *session.Store, state outbound.StateStore, d shared.EventDispatcher, metrics *monitoring.Metrics, cfg *config.Config, log *zap.Logger) *search.Store {
		return search.NewStore(generator, search.Options{
			Selection:      sel,
			State:          state,
			Events:         d,
			Metrics:        metrics,
			Preferences:    sess.Preferences,
			MinIngredients: cfg.Search.MinIngredients,
			OnUnauthorized: sess.Expire,
		}, log)
	},
	func(s *search.Store) inbound.SearchStore { return s },

	func(sess *session.Store, state outbound.StateStore, d shared.EventDispatcher, log *zap.Logger) *favorites.Store {
		return favorites.NewStore(sess, state, d, log)
	},
	func(s *favorites.Store) inbound.FavoritesStore { return s },
)

// HealthModule provides the health checks of the storage and backend
var HealthModule = fx.Provide(
	func(cfg *config.Config, storage *Storage, log *zap.Logger) *healthcheck.HealthCheck {
		hc := healthcheck.New(cfg.App.Version, log)
		hc.Register("state_store", healthcheck.NewStateStoreChecker(storage.Store, storage.Backend))
		if storage.Redis != nil {
			hc.Register("redis", healthcheck.NewRedisChecker(storage.Redis))
		}
		hc.Register("backend", healthcheck.NewBackendChecker(BackendHealthURL(cfg), cfg.API.Timeout))
		return hc
	},
)

// BackendHealthURL derives the backend health endpoint from the auth base URL
func BackendHealthURL(cfg *config.Config) string {
	base := strings.TrimSuffix(cfg.API.AuthBaseURL, "/")
	base = strings.TrimSuffix(base, "/auth")
	base = strings.TrimSuffix(base, "/api")
	return base + "/health"
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterTracing,
	RegisterLifecycleHooks,
	RegisterConfigWatch,
)

// RegisterTracing installs the tracer provider for the lifetime of the app
func RegisterTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) {
	var shutdown func(context.Context) error

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = monitoring.SetupTracing(ctx, monitoring.TracingConfig{
				Enabled:        cfg.Monitoring.EnableTracing,
				ServiceName:    cfg.Monitoring.ServiceName,
				ServiceVersion: cfg.App.Version,
				Environment:    cfg.App.Environment,
				OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
				SamplingRate:   cfg.Monitoring.TraceSampleRate,
			}, log)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(ctx)
		},
	})
}

// RegisterLifecycleHooks rehydrates the stores on start
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	sel *selection.Store,
	sess *session.Store,
	srch *search.Store,
	favs *favorites.Store,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Pantry",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("storage", cfg.Storage.Driver),
			)

			// Stored state is best effort; a failed load leaves the store empty
			if err := sel.Load(ctx); err != nil {
				log.Warn("Failed to load selection", zap.Error(err))
			}
			if err := sess.Restore(ctx); err != nil {
				log.Warn("Failed to restore session", zap.Error(err))
			}
			if err := srch.Load(ctx); err != nil {
				log.Warn("Failed to load last search", zap.Error(err))
			}
			if err := favs.Load(ctx); err != nil {
				log.Warn("Failed to load favorites", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Pantry")
			_ = log.Sync()
			return nil
		},
	})
}

// RegisterConfigWatch applies log level changes from the config file while
// the app runs. Without an explicit config file nothing is watched.
func RegisterConfigWatch(lc fx.Lifecycle, path ConfigPath, level zap.AtomicLevel, log *zap.Logger) error {
	if path == "" {
		return nil
	}

	watcher, err := config.NewWatcher(string(path), log, func(cfg *config.Config) {
		if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
			log.Warn("Ignoring invalid log level", zap.String("level", cfg.App.LogLevel))
			return
		}
		log.Info("Log level updated", zap.String("level", cfg.App.LogLevel))
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go watcher.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return nil
}
