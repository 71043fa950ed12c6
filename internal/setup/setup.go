package setup

import (
	"context"
	"fmt"

	"github.com/wardenbot/warden/internal/database"
	"github.com/wardenbot/warden/internal/setup/config"
	"github.com/wardenbot/warden/internal/setup/logger"
	"go.uber.org/zap"
)

// App bundles the shared dependencies of the bot process.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *database.Client
}

// InitializeApp loads configuration, builds the logger, and connects the
// database.
func InitializeApp(ctx context.Context, configDir string) (*App, error) {
	cfg, usedPath, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Debug.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info("Loaded configuration", zap.String("config_dir", usedPath))

	db, err := database.Connect(ctx, cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}, nil
}

// Cleanup releases the app's resources in reverse initialization order.
func (a *App) Cleanup() {
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database", zap.Error(err))
	}

	_ = a.Logger.Sync()
}
