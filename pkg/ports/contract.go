package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBackendContract runs a suite of tests to verify that a Backend implementation
// adheres to the defined interface contract.
func RunBackendContract(t *testing.T, backend Backend) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		require.NoError(t, backend.Save(ctx, Snapshot{}))

		snap, err := backend.Load(ctx)
		require.NoError(t, err, "Load should not return error")
		assert.Empty(t, snap)
	})

	t.Run("Save and Load", func(t *testing.T) {
		snap := Snapshot{
			"User.1": {
				"__class__":  "User",
				"id":         "1",
				"created_at": "2017-09-28T21:03:54.052298",
				"updated_at": "2017-09-28T21:03:54.052302",
				"email":      "a@b.c",
				"age":        42,
			},
			"City.2": {
				"__class__":  "City",
				"id":         "2",
				"created_at": "2017-09-28T21:03:54.052298",
				"updated_at": "2017-09-28T21:03:54.052302",
			},
		}

		err := backend.Save(ctx, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := backend.Load(ctx)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded, 2)
		assert.Equal(t, "a@b.c", loaded["User.1"]["email"])
		assert.Equal(t, "City", loaded["City.2"]["__class__"])
		// JSON backends may hand numbers back as json.Number or float64.
		assert.NotNil(t, loaded["User.1"]["age"])
	})

	t.Run("Save Replaces", func(t *testing.T) {
		require.NoError(t, backend.Save(ctx, Snapshot{
			"User.1": {"__class__": "User", "id": "1"},
			"User.2": {"__class__": "User", "id": "2"},
		}))
		require.NoError(t, backend.Save(ctx, Snapshot{
			"User.2": {"__class__": "User", "id": "2"},
		}))

		loaded, err := backend.Load(ctx)
		require.NoError(t, err)
		assert.NotContains(t, loaded, "User.1", "Save must drop objects missing from the snapshot")
		assert.Contains(t, loaded, "User.2")
	})
}
