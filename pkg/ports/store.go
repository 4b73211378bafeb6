package ports

import "context"

// Snapshot is the serialised form of every stored object, keyed by "Class.id".
// Each value is the object's map representation (see models.Instance.ToMap).
type Snapshot map[string]map[string]any

// Backend defines how the object map is persisted.
// Persistence is wholesale: the whole map is written on every flush.
type Backend interface {
	// Load returns every persisted object.
	// A backend with nothing persisted yet returns an empty snapshot and no error.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the persisted objects with snapshot.
	Save(ctx context.Context, snapshot Snapshot) error

	// Close releases any resources held by the backend.
	Close() error
}
