package cli

import (
	"github.com/aretw0/hbnb/internal/config"
)

// Options carries the persistent command-line flags. Zero values leave the resolved
// configuration untouched.
type Options struct {
	ConfigPath string
	Backend    string
	File       string
	Debug      bool
}

// Resolve loads the configuration and applies the flags on top of it.
func (o Options) Resolve() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, err
	}

	if o.Backend != "" {
		cfg.Storage.Backend = o.Backend
	}
	if o.File != "" {
		cfg.Storage.Path = o.File
	}
	if o.Debug {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}
