package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/hbnb/internal/logging"
	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/ports"
)

// ErrNotFound is returned when a store key does not exist.
var ErrNotFound = errors.New("object not found")

// SaveObserver is notified after every flush attempt.
type SaveObserver interface {
	ObserveSave(err error)
}

// Engine is the in-memory object map backed by a ports.Backend.
type Engine struct {
	backend ports.Backend
	logger  *slog.Logger
	now     func() time.Time
	obs     SaveObserver

	mu      sync.RWMutex
	objects map[string]*models.Instance
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures a logger for the Engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides the time source used to touch updated objects.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithSaveObserver reports every flush to obs.
func WithSaveObserver(obs SaveObserver) Option {
	return func(e *Engine) {
		e.obs = obs
	}
}

// New creates an empty Engine over backend. Call Reload to read persisted objects.
func New(backend ports.Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: backend,
		logger:  logging.NewNop(),
		now:     time.Now,
		objects: make(map[string]*models.Instance),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// All returns copies of the stored objects, optionally restricted to one class.
// An empty class returns every object. Results are ordered by creation time.
func (e *Engine) All(class string) []*models.Instance {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*models.Instance, 0, len(e.objects))
	for _, obj := range e.objects {
		if class != "" && obj.Class != class {
			continue
		}
		out = append(out, obj.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Keys returns every store key in sorted order.
func (e *Engine) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]string, 0, len(e.objects))
	for k := range e.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns a copy of the object stored under key.
func (e *Engine) Get(key string) (*models.Instance, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	obj, ok := e.objects[key]
	if !ok {
		return nil, false
	}
	return obj.Clone(), true
}

// Has reports whether key is stored.
func (e *Engine) Has(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.objects[key]
	return ok
}

// Count returns the number of stored objects of class.
func (e *Engine) Count(class string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, obj := range e.objects {
		if obj.Class == class {
			n++
		}
	}
	return n
}

// New adds obj to the map. It does not flush.
func (e *Engine) New(obj *models.Instance) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.objects[obj.Key()] = obj.Clone()
}

// Delete removes key from the map and reports whether it existed. It does not flush.
func (e *Engine) Delete(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.objects[key]
	delete(e.objects, key)
	return ok
}

// Update sets every attribute in attrs on the object stored under key.
// Reserved attribute names are skipped. If touch is true, updated_at is refreshed.
// It does not flush.
func (e *Engine) Update(key string, attrs map[string]any, touch bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	obj, ok := e.objects[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	for name, value := range attrs {
		obj.Set(name, value)
	}
	if touch {
		obj.Touch(e.now())
	}
	return nil
}

// Save flushes the whole map to the backend.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.RLock()
	snap := make(ports.Snapshot, len(e.objects))
	for k, obj := range e.objects {
		snap[k] = obj.ToMap()
	}
	e.mu.RUnlock()

	err := e.backend.Save(ctx, snap)
	if e.obs != nil {
		e.obs.ObserveSave(err)
	}
	if err != nil {
		return fmt.Errorf("failed to save objects: %w", err)
	}
	e.logger.Debug("Objects saved", "count", len(snap))
	return nil
}

// Reload replaces the in-memory map with the backend contents.
// Records that cannot be hydrated are skipped and logged.
func (e *Engine) Reload(ctx context.Context) error {
	snap, err := e.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load objects: %w", err)
	}

	objects := make(map[string]*models.Instance, len(snap))
	for key, raw := range snap {
		obj, err := models.FromMap(raw)
		if err != nil {
			e.logger.Warn("Skipping invalid object", "key", key, "err", err)
			continue
		}
		objects[obj.Key()] = obj
	}

	e.mu.Lock()
	e.objects = objects
	e.mu.Unlock()

	e.logger.Debug("Objects reloaded", "count", len(objects))
	return nil
}

// Close releases the backend.
func (e *Engine) Close() error {
	return e.backend.Close()
}
