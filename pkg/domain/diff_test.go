package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	base := NewInstance("inst")
	base.Goals = ListState{Items: []string{"a", "b"}}

	t.Run("Initial Load", func(t *testing.T) {
		diff := Diff(nil, base, KindGoals)
		assert.NotNil(t, diff)
		assert.Equal(t, []string{"a", "b"}, diff.Added)
		assert.False(t, diff.Reordered)
	})

	t.Run("No Change", func(t *testing.T) {
		assert.Nil(t, Diff(base, base.Snapshot(), KindGoals))
	})

	t.Run("Other Kind Untouched", func(t *testing.T) {
		next := base.WithList(KindTasks, ListState{Items: []string{"x"}})
		assert.Nil(t, Diff(base, next, KindGoals))
		assert.NotNil(t, Diff(base, next, KindTasks))
	})

	t.Run("Add and Remove", func(t *testing.T) {
		next := base.WithList(KindGoals, ListState{Items: []string{"b", "c"}})
		diff := Diff(base, next, KindGoals)
		assert.Equal(t, []string{"c"}, diff.Added)
		assert.Equal(t, []string{"a"}, diff.Removed)
		assert.Equal(t, []string{"b", "c"}, diff.Items)
		assert.False(t, diff.Reordered)
	})

	t.Run("Reorder", func(t *testing.T) {
		next := base.WithList(KindGoals, ListState{Items: []string{"b", "a"}})
		diff := Diff(base, next, KindGoals)
		assert.True(t, diff.Reordered)
		assert.Empty(t, diff.Added)
		assert.Empty(t, diff.Removed)
	})
}

func TestInstance_WithListDoesNotMutate(t *testing.T) {
	inst := NewInstance("inst")
	next := inst.WithList(KindGoals, ListState{Items: []string{"a"}})

	assert.Empty(t, inst.Goals.Items)
	assert.Equal(t, []string{"a"}, next.Goals.Items)
	assert.Equal(t, "inst", next.ID)
}
