// Package container provides dependency injection for the application.
// It centralizes the creation and wiring of all collaborators, making them
// explicit and testable.
package container

import (
	"context"
	"fmt"

	"github.com/rafaelvasco/dindinho/internal/categorizer"
	"github.com/rafaelvasco/dindinho/internal/config"
	"github.com/rafaelvasco/dindinho/internal/importer"
	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/reconciler"
	"github.com/rafaelvasco/dindinho/internal/store"
)

// Container holds the wired application dependencies. Immutable after
// creation; access goes through getters only.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       store.Store
	categorizer *categorizer.Orchestrator
	importer    *importer.Importer
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	fileStore, err := store.NewFileStore(cfg.Data.Directory, logger)
	if err != nil {
		return nil, fmt.Errorf("opening data directory: %w", err)
	}

	var aiClient categorizer.AIClient
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		client, err := categorizer.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("creating classification client: %w", err)
		}
		aiClient = client
		logger.Info("AI categorization enabled",
			logging.Field{Key: "model", Value: cfg.AI.Model})
	} else {
		logger.Info("AI categorization disabled")
	}

	orch := categorizer.NewOrchestrator(aiClient, fileStore, logger,
		categorizer.WithBatchSize(cfg.AI.BatchSize),
		categorizer.WithConcurrency(cfg.AI.Concurrency),
		categorizer.WithRetry(cfg.AI.MaxAttempts, categorizer.DefaultRetryBase))

	engine := reconciler.NewEngine(fileStore, cfg.Import.ToleranceDays, logger)
	imp := importer.New(fileStore, engine, orch, logger)

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       fileStore,
		categorizer: orch,
		importer:    imp,
	}, nil
}

// Logger returns the application logger.
func (c *Container) Logger() logging.Logger { return c.logger }

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config { return c.config }

// Store returns the persistence layer.
func (c *Container) Store() store.Store { return c.store }

// Categorizer returns the categorization orchestrator.
func (c *Container) Categorizer() *categorizer.Orchestrator { return c.categorizer }

// Importer returns the import session orchestrator.
func (c *Container) Importer() *importer.Importer { return c.importer }
