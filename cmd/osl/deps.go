package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ersonp/osl-core/internal/application/handlers"
	"github.com/ersonp/osl-core/internal/domain/ports"
	"github.com/ersonp/osl-core/internal/domain/services"
	"github.com/ersonp/osl-core/internal/infrastructure/config"
	"github.com/ersonp/osl-core/internal/infrastructure/docstore/sqlite"
	"github.com/ersonp/osl-core/internal/infrastructure/logging"
	"github.com/ersonp/osl-core/internal/infrastructure/schemasource"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - the factory and store are internal.
type Deps struct {
	Config          *config.Config
	Logger          *zap.Logger
	OntologyHandler *handlers.OntologyHandler
	DocumentHandler *handlers.DocumentHandler
}

// withDeps loads config and the ontology, then calls the provided function.
// The document handler has no store.
func withDeps(fn func(*Deps) error) error {
	return buildDeps(false, fn)
}

// withStore is like withDeps but also opens the document store.
func withStore(fn func(*Deps) error) error {
	return buildDeps(true, fn)
}

func buildDeps(needStore bool, fn func(*Deps) error) error {
	basePath, err := workspace()
	if err != nil {
		return err
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if globalVerbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	raw, err := schemasource.Load(cfg.OntologyPath(basePath))
	if err != nil {
		return fmt.Errorf("loading ontology: %w", err)
	}
	onto, err := services.Compile(raw)
	if err != nil {
		return fmt.Errorf("compiling ontology: %w", err)
	}
	factory := services.NewFactory(onto, services.WithLogger(logger))

	var store ports.DocumentStore
	if needStore {
		repo, err := openStore(basePath, cfg)
		if err != nil {
			return err
		}
		defer repo.Close()

		// Ensure schema exists
		if err := repo.EnsureSchema(context.Background()); err != nil {
			return fmt.Errorf("ensuring sqlite schema: %w", err)
		}
		store = repo
	}

	return fn(&Deps{
		Config:          cfg,
		Logger:          logger,
		OntologyHandler: handlers.NewOntologyHandler(factory),
		DocumentHandler: handlers.NewDocumentHandler(factory, store, logger),
	})
}

// openStore opens the sqlite document store a config points at.
func openStore(basePath string, cfg *config.Config) (ports.DocumentStore, error) {
	repo, err := sqlite.NewRepository(config.StoreConfig{Path: cfg.StorePath(basePath)})
	if err != nil {
		return nil, fmt.Errorf("creating sqlite repository: %w", err)
	}
	return repo, nil
}

// workspace returns the directory holding .osl.
func workspace() (string, error) {
	if globalDir != "" {
		return globalDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}
