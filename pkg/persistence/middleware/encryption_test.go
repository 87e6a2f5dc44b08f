package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"
	"time"

	"github.com/aretw0/screengraph/pkg/adapters/memory"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/persistence/middleware"
	"github.com/aretw0/screengraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.SnapshotStore, active []byte, fallback ...[]byte) ports.SnapshotStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return mw(next)
}

func snapshot(id string) domain.Snapshot {
	return domain.Snapshot{
		SessionID: id,
		Current:   "BrowserTab",
		Status:    domain.StatusAt,
		Values:    map[string]any{"url": "https://example.com/private", "isPrivate": true},
		History:   []string{"tap menu"},
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, encrypted(t, memory.NewStore(), generateKey(t)))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := encrypted(t, underlying, generateKey(t))
	original := snapshot("s1")

	require.NoError(t, store.Save(ctx, "s1", original))

	raw, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, raw.Values, "url")
	assert.Contains(t, raw.Values, "__encrypted__")
	assert.Empty(t, raw.History)
	assert.Equal(t, "BrowserTab", raw.Current, "position stays readable")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, original.Values["url"], loaded.Values["url"])
	assert.Equal(t, original.History, loaded.History)
	assert.True(t, original.UpdatedAt.Equal(loaded.UpdatedAt))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	oldStore := encrypted(t, underlying, oldKey)
	require.NoError(t, oldStore.Save(ctx, "s1", snapshot("s1")))

	newStore := encrypted(t, underlying, newKey, oldKey)
	loaded, err := newStore.Load(ctx, "s1")
	require.NoError(t, err, "fallback key decrypts")

	require.NoError(t, newStore.Save(ctx, "s1", loaded))
	_, err = oldStore.Load(ctx, "s1")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestEncryptionMiddleware_RefusesPlainSnapshots(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "s1", snapshot("s1")))

	_, err := encrypted(t, underlying, generateKey(t)).Load(ctx, "s1")
	assert.ErrorContains(t, err, "missing encrypted data envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorContains(t, err, "32 bytes")
}
