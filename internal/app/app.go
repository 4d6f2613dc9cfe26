package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"omnisearch/gateway/internal/api"
	"omnisearch/gateway/internal/backend"
	"omnisearch/gateway/internal/cache"
	"omnisearch/gateway/internal/config"
	"omnisearch/gateway/internal/database"
	"omnisearch/gateway/internal/repository"
	"omnisearch/gateway/internal/service"
	"omnisearch/gateway/internal/telemetry"
	"omnisearch/gateway/internal/upload"
)

// App bundles the wired gateway so tests can assemble one without starting
// the process.
type App struct {
	DB     *sql.DB // nil when the in-memory session store is selected
	Server *http.Server
	Cache  *cache.Cache

	shutdownTelemetry func(context.Context)
}

// NewApp wires every layer from the given configuration.
func NewApp(cfg *config.Config) (*App, error) {
	var db *sql.DB
	var repo repository.SessionRepository

	switch cfg.SessionStore {
	case "sqlite":
		var err error
		db, err = database.InitDB(cfg.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session database: %w", err)
		}
		repo = repository.NewSQLiteRepository(db, cfg.TitleMaxLen)
		slog.Info("Using SQLite session store", "path", cfg.SessionDBPath)
	default:
		repo = repository.NewMemoryRepository(cfg.TitleMaxLen)
		slog.Info("Using in-memory session store (not durable across restarts)")
	}

	queryCache := cache.New()
	client := backend.NewClient(cfg.BackendURL, backend.ContextTokenSource(),
		// An identity change between calls must drop every cached query
		// result belonging to the previous user.
		backend.WithInvalidateHook(queryCache.Clear),
	)

	notifier := service.NewLogNotifier()
	tracker := upload.NewTracker(upload.DefaultDisplayDelay)

	chatService := service.NewChatService(repo, queryCache, client, notifier, cfg.SessionListTTL, cfg.SessionItemTTL)
	documentService := service.NewDocumentService(client, tracker, notifier, cfg.MaxUploadSize, cfg.AllowedFileTypes)
	searchService := service.NewSearchService(client)
	authService := service.NewAuthService(client)

	chatHandler := api.NewChatHandler(chatService)
	documentHandler := api.NewDocumentHandler(documentService, cfg.MaxUploadSize)
	searchHandler := api.NewSearchHandler(searchService)
	authHandler := api.NewAuthHandler(authService)

	routerCfg := api.RouterConfig{
		AuthSecret:     cfg.AuthSecret,
		RequestTimeout: cfg.RequestTimeout,
	}

	router := api.NewRouter(routerCfg, chatHandler, documentHandler, searchHandler, authHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled so downloads can stream.
		IdleTimeout:       120 * time.Second,
	}

	return &App{DB: db, Server: server, Cache: queryCache}, nil
}

// Run is the process entrypoint behind cmd/server.
func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	if err := telemetry.SetupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		slog.Error("Failed to set up logging", "error", err)
		return 1
	}

	logConfigSource()

	_, meter, shutdownTelemetry, err := telemetry.Init(context.Background(), cfg.TelemetryDir)
	if err != nil {
		slog.Error("Failed to initialize telemetry", "error", err)
		return 1
	}
	defer shutdownTelemetry(context.Background())

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to assemble the gateway", "error", err)
		return 1
	}
	if app.DB != nil {
		defer func() {
			if err := app.DB.Close(); err != nil {
				slog.Error("Failed to close session database", "error", err)
			}
		}()
	}

	metricsMW, err := telemetry.RequestMetrics(meter)
	if err != nil {
		slog.Error("Failed to create request metrics middleware", "error", err)
		return 1
	}
	app.Server.Handler = metricsMW(app.Server.Handler)

	slog.Info("Starting gateway", "addr", app.Server.Addr, "backend", cfg.BackendURL)
	if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}
