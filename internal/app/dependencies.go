// Package app assembles the application's dependency graph.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pulseiq/pulseiq/internal/domain/ingest/batch"
	ingesthandler "github.com/pulseiq/pulseiq/internal/domain/ingest/handler"
	ingestrepo "github.com/pulseiq/pulseiq/internal/domain/ingest/repository"
	ingestservice "github.com/pulseiq/pulseiq/internal/domain/ingest/service"
	"github.com/pulseiq/pulseiq/internal/domain/reporting"
	"github.com/pulseiq/pulseiq/pkg/config"
	"github.com/pulseiq/pulseiq/pkg/db"
	"github.com/pulseiq/pulseiq/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	IngestRepo    ingestrepo.IngestRepository
	ReportingRepo reporting.Repository

	// Services
	IngestService    *ingestservice.Service
	ReportingService *reporting.Service
	BatchRunner      *batch.Runner

	// Handlers
	IngestHandler    *ingesthandler.IngestHandler
	ReportingHandler *reporting.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initDomains(); err != nil {
		return nil, fmt.Errorf("failed to init domains: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initDomains initializes repositories, services and handlers.
func (d *Dependencies) initDomains() error {
	d.IngestRepo = ingestrepo.NewPostgresIngestRepository(d.DB.Pool)
	d.ReportingRepo = reporting.NewPostgresRepository(d.DB.Pool)

	d.IngestService = ingestservice.NewService(d.IngestRepo, d.Logger)
	if dir := d.Config.Ingest.ArchiveDir; dir != "" {
		archive, err := storage.NewLocalArchive(dir)
		if err != nil {
			return err
		}
		d.IngestService.WithArchive(archive)
	}

	d.ReportingService = reporting.NewService(d.ReportingRepo, d.Logger)
	d.BatchRunner = batch.NewRunner(d.IngestService, d.Logger)

	d.IngestHandler = ingesthandler.NewIngestHandler(d.IngestService, d.Logger)
	d.ReportingHandler = reporting.NewHandler(d.ReportingService, d.Logger)
	return nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
