package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/hbnb/internal/adapters/file"
	"github.com/aretw0/hbnb/internal/adapters/memory"
	"github.com/aretw0/hbnb/internal/adapters/redis"
	"github.com/aretw0/hbnb/internal/adapters/sqlite"
	"github.com/aretw0/hbnb/internal/config"
	"github.com/aretw0/hbnb/pkg/persistence/middleware"
	"github.com/aretw0/hbnb/pkg/ports"
	"github.com/aretw0/hbnb/pkg/storage"
)

// OpenStore builds the backend selected by cfg and loads its objects into a new Engine.
// The caller owns the engine and must Close it.
func OpenStore(ctx context.Context, cfg config.Config, opts ...storage.Option) (*storage.Engine, error) {
	mws, err := backendMiddleware(cfg.Storage)
	if err != nil {
		return nil, err
	}
	backend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	backend = middleware.Chain(backend, mws...)

	engine := storage.New(backend, opts...)
	if err := engine.Reload(ctx); err != nil {
		_ = engine.Close()
		return nil, err
	}
	return engine, nil
}

func openBackend(ctx context.Context, cfg config.Storage) (ports.Backend, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return file.New(cfg.Path), nil
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("error opening sqlite store: %w", err)
		}
		return store, nil
	case config.BackendRedis:
		var opts []redis.Option
		if cfg.RedisKey != "" {
			opts = append(opts, redis.WithKey(cfg.RedisKey))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("error connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Backend)
}

// backendMiddleware builds the redaction and encryption layers. Redaction runs
// first so masked values are what gets sealed.
func backendMiddleware(cfg config.Storage) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Redact)
		if err != nil {
			return nil, fmt.Errorf("%w: redact: %v", config.ErrInvalid, err)
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey == "" {
		return mws, nil
	}

	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption_key: %v", config.ErrInvalid, err)
	}
	encCfg := middleware.EncryptionConfig{ActiveKey: active}
	for i, s := range cfg.PreviousKeys {
		k, err := middleware.ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("%w: previous_keys[%d]: %v", config.ErrInvalid, i, err)
		}
		encCfg.FallbackKeys = append(encCfg.FallbackKeys, k)
	}
	enc, err := middleware.NewEncryptionMiddleware(encCfg)
	if err != nil {
		return nil, err
	}
	return append(mws, enc), nil
}
