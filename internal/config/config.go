// Package config resolves the console settings from defaults, an optional YAML file
// and HBNB_* environment variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit config path is given and it exists.
const DefaultFile = "hbnb.yaml"

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "HBNB_"

// Storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

var Backends = []string{BackendFile, BackendMemory, BackendRedis, BackendSQLite}

var ErrInvalid = errors.New("invalid configuration")

type Storage struct {
	Backend       string `mapstructure:"backend" env:"BACKEND"`
	Path          string `mapstructure:"path" env:"PATH"`
	RedisAddr     string `mapstructure:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"redis_db" env:"REDIS_DB"`
	RedisKey      string `mapstructure:"redis_key" env:"REDIS_KEY"`

	// EncryptionKey is a base64 AES-256 key; when set every record is sealed at rest.
	EncryptionKey string   `mapstructure:"encryption_key" env:"ENCRYPTION_KEY"`
	PreviousKeys  []string `mapstructure:"previous_keys" env:"PREVIOUS_KEYS" envSeparator:","`
	// Redact lists attribute name patterns masked before they reach the backend.
	Redact []string `mapstructure:"redact" env:"REDACT" envSeparator:","`
}

type HTTP struct {
	Addr string `mapstructure:"addr" env:"ADDR"`
}

// Config holds every setting of the console and its servers.
type Config struct {
	Storage      Storage `mapstructure:"storage" envPrefix:"STORAGE_"`
	Prompt       string  `mapstructure:"prompt" env:"PROMPT"`
	Debug        bool    `mapstructure:"debug" env:"DEBUG"`
	MaxInputSize int     `mapstructure:"max_input_size" env:"MAX_INPUT_SIZE"`
	HTTP         HTTP    `mapstructure:"http" envPrefix:"HTTP_"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend:   BackendFile,
			Path:      "file.json",
			RedisAddr: "localhost:6379",
			RedisKey:  "hbnb:objects",
		},
		Prompt:       "(hbnb) ",
		MaxInputSize: 4096,
		HTTP: HTTP{
			Addr: ":8080",
		},
	}
}

// Load resolves the configuration. An empty path reads DefaultFile if present;
// an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := mergeFile(&cfg, path, explicit); err != nil {
		return cfg, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func mergeFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if raw == nil {
		return nil
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if len(md.Unused) > 0 {
		slices.Sort(md.Unused)
		return fmt.Errorf("%w: unknown keys in %s: %v", ErrInvalid, path, md.Unused)
	}
	return nil
}

// Validate checks the settings that cannot be fixed by a default.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.Storage.Backend) {
		return fmt.Errorf("%w: unknown backend %q (want one of %v)", ErrInvalid, c.Storage.Backend, Backends)
	}
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: %s backend needs a path", ErrInvalid, c.Storage.Backend)
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("%w: redis backend needs an address", ErrInvalid)
		}
	}
	if len(c.Storage.PreviousKeys) > 0 && c.Storage.EncryptionKey == "" {
		return fmt.Errorf("%w: previous_keys needs an encryption_key", ErrInvalid)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("%w: max_input_size must be positive", ErrInvalid)
	}
	return nil
}
