package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/screengraph/pkg/adapters/file"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := file.New(dir)

	require.NoError(t, store.Save(ctx, "run-1", domain.Snapshot{Current: "Home"}))
	_, err := os.Stat(filepath.Join(dir, "run-1.json"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_RejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	store := file.New(t.TempDir())

	assert.Error(t, store.Save(ctx, "", domain.Snapshot{}))
	assert.Error(t, store.Save(ctx, "../escape", domain.Snapshot{}))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
