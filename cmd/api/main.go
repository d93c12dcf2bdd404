package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/komplek-api/docs" // Swagger docs
	"github.com/sjperalta/komplek-api/internal/config"
	"github.com/sjperalta/komplek-api/internal/database"
	"github.com/sjperalta/komplek-api/internal/handlers"
	"github.com/sjperalta/komplek-api/internal/jobs"
	"github.com/sjperalta/komplek-api/internal/middleware"
	"github.com/sjperalta/komplek-api/internal/remote"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/internal/services"
	"github.com/sjperalta/komplek-api/internal/storage"
	"github.com/sjperalta/komplek-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Komplek API
// @version 1.0
// @description REST API for komplek cash ledger and monthly dues

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" || len(cfg.AdminEmails) == 0 {
		logger.Warn("Month closed emails disabled: RESEND_API_KEY, FROM_EMAIL or ADMIN_EMAILS not set")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, watchDir, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized storage", "driver", cfg.StorageDriver)

	repos := repository.NewRepositories(store)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// a nil *IuranClient must not reach the interface
	var gateway services.DuesGateway
	if cfg.RemoteEnabled() {
		gateway = remote.NewIuranClient(cfg.RemoteDuesURL, cfg.KomplekID, cfg.RemoteDuesSecret, cfg.RemoteDuesTimeout)
		logger.Info("Remote dues service configured", "url", cfg.RemoteDuesURL)
	} else {
		logger.Info("No remote dues service, running in local mode")
	}

	svcs := services.NewServices(repos, worker, cfg, gateway, time.Now)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svcs.Startup(startupCtx); err != nil {
		logger.Error("Startup repair failed", "error", err)
	}
	cancelStartup()

	scheduleJobs(worker, svcs, cfg, watchDir)

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

// openStore returns the configured store and, for the file driver, the directory to watch
func openStore(cfg *config.Config) (storage.Store, string, error) {
	if cfg.StorageDriver == config.StorageDriverDatabase {
		db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
		if err != nil {
			return nil, "", err
		}
		if err := database.Migrate(db); err != nil {
			return nil, "", err
		}
		logger.Info("Connected to database")
		return storage.NewDBStore(db), "", nil
	}

	local, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, "", err
	}
	return local, local.BasePath(), nil
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterRoutes(router.Group("/api/v1"), h)

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config, watchDir string) {
	worker.ScheduleEvery("rollover", cfg.RolloverInterval, svcs.Sync.CheckRollover)

	// the database driver has no file events, so other instances are seen through the dirty marker
	worker.ScheduleEvery("dirty-poll", cfg.DirtyPollInterval, svcs.Sync.PollDirty)

	if watchDir != "" {
		watcher := storage.NewWatcher(watchDir, 250*time.Millisecond, storage.SharedKeys(), func(keys []string) {
			worker.Enqueue("storage-change:"+strings.Join(keys, ","), func(ctx context.Context) error {
				return svcs.Sync.HandleStorageChange(ctx, keys)
			})
		})
		worker.Go("storage-watcher", watcher.Run)
	}

	logger.Info("Scheduled recurring jobs")
}
