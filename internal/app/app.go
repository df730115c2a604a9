package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amrlab/amrserver/internal/controllers/restserver"
	"github.com/amrlab/amrserver/internal/database"
	"github.com/amrlab/amrserver/internal/ingest"
	"github.com/amrlab/amrserver/internal/log"
	"github.com/amrlab/amrserver/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfgData, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	cfgData.ApplyDefaults()

	// Connect storage
	db := database.NewClient(&cfgData.Database, a.logger)
	if err := db.Connect(); err != nil {
		return fmt.Errorf("error connecting to storage: %w", err)
	}
	defer db.Close()

	if cfgData.Server.SeedDataset {
		if err := a.seedIfEmpty(db, cfgData.Server.SeedValue); err != nil {
			return err
		}
	}

	// Start the REST server controller
	restController, err := restserver.NewController(ctx, &wg, a.configProvider, cfgData.Server, db, a.logger)
	if err != nil {
		return err
	}
	if err := restController.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// seedIfEmpty loads the synthetic demonstration dataset when the
// observations table has no rows.
func (a *App) seedIfEmpty(db *database.Client, seed int64) error {
	count, err := db.Count()
	if err != nil {
		return fmt.Errorf("error checking observation count: %w", err)
	}
	if count > 0 {
		log.Debugf("storage already holds %d observations, skipping seed", count)
		return nil
	}

	observations := ingest.GenerateObservations(seed)
	if err := db.InsertObservations(observations); err != nil {
		return fmt.Errorf("error seeding demonstration dataset: %w", err)
	}
	log.Infof("seeded %d synthetic observations (seed %d)", len(observations), seed)
	return nil
}
