// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	authHTTP "github.com/NotSilaev/MrStone/internal/auth/http"
	authService "github.com/NotSilaev/MrStone/internal/auth/service"
	authUseCase "github.com/NotSilaev/MrStone/internal/auth/usecase"
	"github.com/NotSilaev/MrStone/internal/cache"
	"github.com/NotSilaev/MrStone/internal/clock"
	"github.com/NotSilaev/MrStone/internal/config"
	"github.com/NotSilaev/MrStone/internal/database"
	"github.com/NotSilaev/MrStone/internal/http"
	"github.com/NotSilaev/MrStone/internal/metrics"
	rateLimitUseCase "github.com/NotSilaev/MrStone/internal/ratelimit/usecase"
	userHTTP "github.com/NotSilaev/MrStone/internal/user/http"
	userUseCase "github.com/NotSilaev/MrStone/internal/user/usecase"
)

// cachePingTimeout bounds the startup connectivity check of the shared cache.
const cachePingTimeout = 2 * time.Second

// lazy holds a component created on first access. A failed initialization is remembered
// and returned on every later access.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(init func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = init()
	})
	return l.value, l.err
}

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	loggerInit      sync.Once
	clock           clock.Clock
	clockInit       sync.Once
	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	cache           lazy[cache.Cache]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	// Auth
	tokenService    lazy[authService.TokenService]
	tokenRepository lazy[authUseCase.TokenRepository]
	tokenUseCase    lazy[authUseCase.TokenUseCase]
	tokenHandler    lazy[*authHTTP.TokenHandler]

	// Users
	userRepository lazy[userUseCase.UserRepository]
	userUseCase    lazy[userUseCase.UseCase]
	userHandler    lazy[*userHTTP.UserHandler]

	// Rate limiting
	limiter  lazy[rateLimitUseCase.Limiter]
	throttle lazy[*rateLimitUseCase.Throttle]

	// Servers
	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	// mu guards shutdown against concurrent calls.
	mu sync.Mutex
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Clock returns the wall clock shared by every component.
func (c *Container) Clock() clock.Clock {
	c.clockInit.Do(func() {
		c.clock = clock.NewSystem()
	})
	return c.clock
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// Cache returns the shared counter cache selected by CACHE_DRIVER.
func (c *Container) Cache() (cache.Cache, error) {
	return c.cache.get(c.initCache)
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the business metrics recorder. It records nothing when metrics
// are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}
		return metrics.NewBusinessMetrics(provider.MeterProvider(), provider.Namespace())
	})
}

// HTTPServer returns the API server with its router mounted.
func (c *Container) HTTPServer() (*http.Server, error) {
	return c.httpServer.get(c.initHTTPServer)
}

// MetricsServer returns the Prometheus scrape server.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer.value != nil {
		if err := c.httpServer.value.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer.value != nil {
		if err := c.metricsServer.value.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider.value != nil {
		if err := c.metricsProvider.value.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.cache.value != nil {
		if err := c.cache.value.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("cache close: %w", err))
		}
	}

	if c.db.value != nil {
		if err := c.db.value.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initCache connects the shared cache. The memory driver only limits clients per instance.
func (c *Container) initCache() (cache.Cache, error) {
	switch c.config.CacheDriver {
	case config.CacheDriverMemory:
		c.Logger().Warn("using in-process cache, rate limit counters are not shared between instances")
		return cache.NewMemoryCache(c.Clock()), nil
	case config.CacheDriverRedis:
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:         c.config.CacheAddr(),
			Password:     c.config.CachePassword,
			DB:           c.config.CacheDB,
			PoolSize:     c.config.CacheMaxConnections,
			Prefix:       c.config.CacheKeyPrefix,
			DialTimeout:  c.config.CacheOperationTimeout,
			ReadTimeout:  c.config.CacheOperationTimeout,
			WriteTimeout: c.config.CacheOperationTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}

		// An unreachable cache does not block startup; rate limit checks fail open until
		// it recovers and /ready reports it.
		ctx, cancel := context.WithTimeout(context.Background(), cachePingTimeout)
		defer cancel()
		if err := redisCache.Ping(ctx); err != nil {
			c.Logger().Warn("cache unreachable at startup, rate limiting fails open until it recovers",
				slog.String("addr", c.config.CacheAddr()),
				slog.Any("error", err))
		}
		return redisCache, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", c.config.CacheDriver)
	}
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	sharedCache, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for http server: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}

	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	routes := http.Routes{
		TokenHandler:    tokenHandler,
		UserHandler:     userHandler,
		TokenUseCase:    tokenUseCase,
		Clock:           c.Clock(),
		MetricsProvider: metricsProvider,
	}

	if c.config.RateLimitEnabled {
		throttle, err := c.Throttle()
		if err != nil {
			return nil, fmt.Errorf("failed to get throttle for http server: %w", err)
		}
		routes.Throttler = throttle
	}

	server := http.NewServer(db, sharedCache, c.config.ServerHost, c.config.ServerPort, logger)
	if err := server.SetupRouter(c.config, routes); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	return server, nil
}
