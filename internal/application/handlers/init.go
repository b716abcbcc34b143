// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/osl-core/internal/domain/ports"
	"github.com/ersonp/osl-core/internal/infrastructure/config"
)

// StoreOpener opens the document store a config points at.
type StoreOpener func(basePath string, cfg *config.Config) (ports.DocumentStore, error)

// InitHandler handles workspace initialization.
type InitHandler struct {
	openStore StoreOpener
}

// NewInitHandler creates a new init handler. openStore may be nil to skip
// creating the document store.
func NewInitHandler(openStore StoreOpener) *InitHandler {
	return &InitHandler{
		openStore: openStore,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath string
	StorePath  string
}

// Handle writes the default config and creates the document store schema.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("osl already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if h.openStore != nil {
		store, err := h.openStore(basePath, cfg)
		if err != nil {
			return nil, fmt.Errorf("opening document store: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating document store: %w", err)
		}
	}

	return &InitResult{
		ConfigPath: config.ConfigFilePath(basePath),
		StorePath:  cfg.StorePath(basePath),
	}, nil
}
