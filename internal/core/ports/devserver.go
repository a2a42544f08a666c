package ports

import (
	"context"

	"go.trai.ch/forge/internal/core/domain"
)

// DevServer serves the output directory during development.
//
//go:generate mockgen -source=devserver.go -destination=mocks/mock_devserver.go -package=mocks
type DevServer interface {
	// Start listens on the configured address and serves dir in the background
	// until ctx is done. It returns once the listener is ready.
	Start(ctx context.Context, cfg domain.ServerConfig, dir string) error
	// Reload tells connected browsers to reload.
	Reload()
	// URL returns the base URL the server listens on, or "" before Start.
	URL() string
	// Wait blocks until the server has shut down and returns its terminal error.
	Wait() error
}
