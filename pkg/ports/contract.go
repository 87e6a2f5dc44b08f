package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract verifies that a SnapshotStore implementation
// honours the interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-" + time.Now().Format("20060102150405")

	snapshot := func(id, current string) domain.Snapshot {
		return domain.Snapshot{
			SessionID: id,
			Current:   current,
			Status:    domain.StatusAt,
			Values:    map[string]any{},
			History:   []string{current},
			UpdatedAt: time.Now().UTC(),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := snapshot(sessionID, "Settings")
		snap.Opener = "BrowserTab"
		snap.Consumed = true
		snap.Values["nightMode"] = true
		snap.Values["userName"] = "ada"
		snap.Values["tabs"] = 3
		snap.History = []string{"Home", "Menu", "Settings"}

		require.NoError(t, store.Save(ctx, sessionID, snap), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Settings", loaded.Current)
		assert.Equal(t, domain.StatusAt, loaded.Status)
		assert.Equal(t, "BrowserTab", loaded.Opener)
		assert.True(t, loaded.Consumed)
		assert.Equal(t, true, loaded.Values["nightMode"])
		assert.Equal(t, "ada", loaded.Values["userName"])
		// JSON backends return numbers as float64; UserState.Restore normalises them.
		assert.NotNil(t, loaded.Values["tabs"])
		assert.Equal(t, []string{"Home", "Menu", "Settings"}, loaded.History)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, snapshot(sessionID, "Home")))
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Home", loaded.Current)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, snapshot(sessionID, "Home")))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, snapshot(id1, "Home")))
		require.NoError(t, store.Save(ctx, id2, snapshot(id2, "Home")))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
