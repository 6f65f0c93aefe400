package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/twentyfive/pkg/adapters/file"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements StateStore
var _ ports.StateStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunStateStoreContract(t, store)
}

func TestFileStore_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, "inst", domain.NewInstance("inst")))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "inst.json", entries[0].Name())
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store := file.New(filepath.Join(dir, "instances"))
	ctx := context.Background()

	err := store.Save(ctx, "../escape", domain.NewInstance("escape"))
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "escape.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileStore_ListSkipsOnlyTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for _, id := range []string{"tmp-goals", ".hidden", "inst"} {
		require.NoError(t, store.Save(ctx, id, domain.NewInstance(id)))
	}
	// A write interrupted before its rename.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".inst-123.tmp"), []byte("{"), 0o644))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{".hidden", "inst", "tmp-goals"}, ids)
}
