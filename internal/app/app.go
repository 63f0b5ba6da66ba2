// Package app wires configuration, storage, and services together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Ranjith-H7/backend/internal/common"
	"github.com/Ranjith-H7/backend/internal/interfaces"
	"github.com/Ranjith-H7/backend/internal/services/market"
	"github.com/Ranjith-H7/backend/internal/services/portfolio"
	"github.com/Ranjith-H7/backend/internal/services/seed"
	"github.com/Ranjith-H7/backend/internal/services/updater"
	"github.com/Ranjith-H7/backend/internal/storage/surrealdb"
)

// App holds the application dependencies.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     interfaces.StorageManager
	Updater     interfaces.UpdateService
	Seeder      interfaces.SeedService
	Scheduler   *updater.Scheduler
	StartupTime time.Time
}

// NewApp creates the application with all dependencies wired.
func NewApp(configPaths ...string) (*App, error) {
	config, err := common.LoadConfig(configPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging)

	storage, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	simulator := market.NewSimulator(config.Update.HistoryCap, logger)
	valuator := portfolio.NewValuator(logger)

	updateSvc := updater.NewService(storage, simulator, valuator, logger, config.Update)
	seeder := seed.NewService(storage, logger, config.Update.GetInterval())
	scheduler := updater.NewScheduler(updateSvc, logger)

	return &App{
		Config:      config,
		Logger:      logger,
		Storage:     storage,
		Updater:     updateSvc,
		Seeder:      seeder,
		Scheduler:   scheduler,
		StartupTime: time.Now(),
	}, nil
}

// Seed ensures the default asset catalog exists. Safe to call on every start.
func (a *App) Seed(ctx context.Context) error {
	created, err := a.Seeder.EnsureAssets(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed assets: %w", err)
	}
	if created > 0 {
		a.Logger.Info().Int("assets", created).Msg("Seeded default asset catalog")
	}
	return nil
}

// StartScheduler begins the periodic update cycle.
func (a *App) StartScheduler() error {
	return a.Scheduler.Start(a.Config.Update.Schedule)
}

// Close releases application resources.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Storage != nil {
		a.Storage.Close()
	}
}
