package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	instanceID := "contract-test-instance-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		inst := domain.NewInstance(instanceID)
		inst.Goals.Items = []string{"learn spanish", "visit japan"}
		inst.Tasks.Items = []string{"eat 10 chickens"}
		inst.Revision = 3

		err := store.Save(ctx, instanceID, inst)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, instanceID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, instanceID, loaded.ID)
		assert.Equal(t, []string{"learn spanish", "visit japan"}, loaded.Goals.Items)
		assert.Equal(t, []string{"eat 10 chickens"}, loaded.Tasks.Items)
		assert.Equal(t, uint64(3), loaded.Revision)
	})

	t.Run("Order Preserved", func(t *testing.T) {
		inst := domain.NewInstance(instanceID)
		inst.Goals.Items = []string{"c", "a", "b"}
		require.NoError(t, store.Save(ctx, instanceID, inst))

		loaded, err := store.Load(ctx, instanceID)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, loaded.Goals.Items)
	})

	t.Run("Isolation", func(t *testing.T) {
		inst := domain.NewInstance(instanceID)
		inst.Goals.Items = []string{"a"}
		require.NoError(t, store.Save(ctx, instanceID, inst))

		// Mutating the caller's copies must not leak into the store.
		inst.Goals.Items[0] = "mutated"
		loaded, err := store.Load(ctx, instanceID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, loaded.Goals.Items)

		loaded.Goals.Items[0] = "mutated-again"
		reloaded, err := store.Load(ctx, instanceID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, reloaded.Goals.Items)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+instanceID)
		assert.ErrorIs(t, err, domain.ErrInstanceNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, instanceID, domain.NewInstance(instanceID))
		require.NoError(t, err)

		err = store.Delete(ctx, instanceID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, instanceID)
		assert.ErrorIs(t, err, domain.ErrInstanceNotFound, "Load after Delete should return ErrInstanceNotFound")

		assert.NoError(t, store.Delete(ctx, instanceID), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := instanceID + "-1"
		id2 := instanceID + "-2"
		_ = store.Save(ctx, id1, domain.NewInstance(id1))
		_ = store.Save(ctx, id2, domain.NewInstance(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		instances, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, instances, id1)
		assert.Contains(t, instances, id2)
	})
}
