// Package ports defines the interfaces between the build core and its adapters.
package ports

import "go.trai.ch/forge/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the project configuration. When configPath is empty the
	// configuration file is discovered by walking up from cwd.
	Load(cwd, configPath string) (*domain.Project, error)
}
