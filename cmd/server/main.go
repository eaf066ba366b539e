package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/memstore"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/conectahub/intranet-api/internal/config"
	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/database"
	"github.com/conectahub/intranet-api/internal/handlers"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/metrics"
	"github.com/conectahub/intranet-api/internal/middleware"
	"github.com/conectahub/intranet-api/internal/recordstore"
	"github.com/conectahub/intranet-api/internal/repository"
	"github.com/conectahub/intranet-api/internal/services"
	"github.com/conectahub/intranet-api/internal/utils"
)

const serviceName = "conectahub-api"

func main() {
	log := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		log.Warn(context.Background(), ".env file not found, relying on environment", nil)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	log = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := newStorage(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to initialize storage", err)
		os.Exit(1)
	}
	defer closeStorage()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServiceMetrics(registry)

	users := services.NewUserService(storage.Users, services.UserServiceConfig{
		BcryptCost:    cfg.BcryptCost,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}, log, m)
	notifications := services.NewNotificationService(storage, users, log, m)
	svc := handlers.Services{
		Users:         users,
		Tasks:         services.NewTaskService(storage, users, notifications, cfg.CompletionPolicy, log, m),
		Messages:      services.NewMessageService(storage.Messages, m),
		Notifications: notifications,
		Data:          services.NewDataService(storage, log),
		Ranking:       services.NewRankingService(storage.Users),
	}

	if _, err := users.EnsureDefaultAdmin(ctx); err != nil {
		log.Error(ctx, "failed to ensure default admin", err)
		os.Exit(1)
	}
	if cfg.SeedExamples {
		created, err := users.SeedExamples(ctx)
		if err != nil {
			log.Error(ctx, "failed to seed example users", err)
			os.Exit(1)
		}
		log.Info(log.WithField(ctx, "created", created), "example users seeded")
	}

	store, err := newSessionStore(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to create session store", err)
		os.Exit(1)
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(log), middleware.Logging(log))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "ConectaHub API is running",
			"mode":    storage.Mode,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(r, svc, log)

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	// Start server
	startCtx := log.WithFields(ctx, map[string]any{
		"addr":    addr,
		"storage": storage.Mode,
		"session": cfg.SessionBackend,
	})
	log.Info(startCtx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(startCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	log.Info(startCtx, "api server stopped")
}

// newStorage builds the Storage Port selected by the configuration. The
// returned func releases the backend connections.
func newStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repository.Storage, func(), error) {
	if cfg.StorageMode == constants.StorageModeRemote {
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := database.Close(db); err != nil {
				log.Error(context.Background(), "error closing database", err)
			}
		}
		if err := database.Migrate(db); err != nil {
			closeDB()
			return nil, nil, err
		}
		return repository.NewRemoteStorage(db), closeDB, nil
	}

	if cfg.KVBackend == config.KVBackendRedis {
		client, err := recordstore.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		closeRedis := func() {
			if err := client.Close(); err != nil {
				log.Error(context.Background(), "error closing redis", err)
			}
		}
		kv := recordstore.NewRedisKV(client, cfg.RedisPrefix)
		return repository.NewLocalStorage(recordstore.New(kv)), closeRedis, nil
	}

	return repository.NewLocalStorage(recordstore.New(recordstore.NewMemoryKV())), func() {}, nil
}

func newSessionStore(cfg *config.Config, log *logger.Logger) (sessions.Store, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := utils.GenerateSecret(32)
		if err != nil {
			return nil, err
		}
		secret = generated
		log.Warn(context.Background(), "no session secret configured, sessions will not survive a restart", nil)
	}

	var store sessions.Store
	switch cfg.SessionBackend {
	case config.SessionBackendCookie:
		store = cookie.NewStore([]byte(secret))
	case config.SessionBackendRedis:
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		store, err = redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			opts.Addr, // Redis address from config
			opts.Username,
			opts.Password,
			[]byte(secret), // authentication key
		)
		if err != nil {
			return nil, fmt.Errorf("creating redis session store: %w", err)
		}
	default:
		store = memstore.NewStore([]byte(secret))
	}

	// Configure session options based on environment
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
