package dashboard

import (
	core "github.com/goliatone/go-insights/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Config re-exports the YAML-backed configuration.
type Config = core.Config

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// ReadConfig proxies to the configuration loader.
func ReadConfig(path string) (*Config, error) {
	return core.ReadConfig(path)
}
