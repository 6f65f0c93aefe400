package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/twentyfive/pkg/adapters/loam"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StateStore = (*loam.Store)(nil)

func TestLoamStore_Contract(t *testing.T) {
	store, err := loam.Open(t.TempDir())
	require.NoError(t, err)

	ports.RunStateStoreContract(t, store)
}

func TestLoamStore_WritesReadableDocument(t *testing.T) {
	dir := t.TempDir()
	store, err := loam.Open(dir)
	require.NoError(t, err)

	inst := domain.NewInstance("twentyfive")
	inst.Goals.Items = []string{"visit japan"}
	require.NoError(t, store.Save(context.Background(), "twentyfive", inst))

	matches, err := filepath.Glob(filepath.Join(dir, "twentyfive.*"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "visit japan")
}

func TestLoamStore_RejectsGlobIDs(t *testing.T) {
	store, err := loam.Open(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "*")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInstanceNotFound)
}
