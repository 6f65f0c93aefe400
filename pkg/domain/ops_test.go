package domain_test

import (
	"testing"

	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(values ...string) domain.ListState {
	if values == nil {
		values = []string{}
	}
	return domain.ListState{Items: values}
}

func TestCreate_Resets(t *testing.T) {
	next, _, err := domain.Create(items("a", "b"), domain.CreateRequest{})
	require.NoError(t, err)
	assert.Empty(t, next.Items)
	assert.NotNil(t, next.Items, "Create should yield an empty, non-nil list")
}

func TestAdd_AppendsInOrder(t *testing.T) {
	state := domain.NewListState()
	state, _, err := domain.Add(state, domain.AddRequest{Item: "a"})
	require.NoError(t, err)
	state, _, err = domain.Add(state, domain.AddRequest{Item: "b"})
	require.NoError(t, err)

	resp, err := domain.List(state, domain.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, resp.Items)
	assert.Nil(t, resp.Remaining)
}

func TestAdd_Idempotent(t *testing.T) {
	once, _, err := domain.Add(items("a"), domain.AddRequest{Item: "b"})
	require.NoError(t, err)
	twice, _, err := domain.Add(once, domain.AddRequest{Item: "b"})
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestAdd_Uniqueness(t *testing.T) {
	state := domain.NewListState()
	for _, v := range []string{"a", "b", "a", "c", "b", "a"} {
		var err error
		state, _, err = domain.Add(state, domain.AddRequest{Item: v})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, state.Items)
}

func TestAdd_EmptyItem(t *testing.T) {
	state := items("a")
	next, _, err := domain.Add(state, domain.AddRequest{Item: ""})
	assert.ErrorIs(t, err, domain.ErrEmptyItem)
	assert.Equal(t, state, next)
}

func TestAdd_DoesNotAliasInput(t *testing.T) {
	backing := make([]string, 1, 8)
	backing[0] = "a"
	state := domain.ListState{Items: backing}

	next, _, err := domain.Add(state, domain.AddRequest{Item: "b"})
	require.NoError(t, err)

	next.Items[0] = "mutated"
	assert.Equal(t, "a", state.Items[0])
	assert.Len(t, state.Items, 1)
}

func TestMove(t *testing.T) {
	tests := []struct {
		name   string
		item   string
		target int
		want   []string
	}{
		{"to front", "b", 0, []string{"b", "a", "c"}},
		{"to end", "a", 2, []string{"b", "c", "a"}},
		{"same place", "b", 1, []string{"a", "b", "c"}},
		{"back one", "c", 1, []string{"a", "c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := items("a", "b", "c")
			next, _, err := domain.Move(state, domain.MoveRequest{Item: tt.item, TargetIndex: tt.target})
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Items)
			assert.Equal(t, []string{"a", "b", "c"}, state.Items, "input must stay untouched")
		})
	}
}

func TestMove_Errors(t *testing.T) {
	state := items("a", "b", "c")

	tests := []struct {
		name    string
		req     domain.MoveRequest
		wantErr error
	}{
		{"absent item", domain.MoveRequest{Item: "z", TargetIndex: 0}, domain.ErrNotFound},
		{"negative index", domain.MoveRequest{Item: "a", TargetIndex: -1}, domain.ErrInvalidIndex},
		{"past end", domain.MoveRequest{Item: "a", TargetIndex: 3}, domain.ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := domain.Move(state, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, state, next)
			assert.Equal(t, []string{"a", "b", "c"}, state.Items)
		})
	}
}

func TestDelete(t *testing.T) {
	next, _, err := domain.Delete(items("a", "b", "c"), domain.DeleteRequest{Item: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, next.Items)

	_, _, err = domain.Delete(next, domain.DeleteRequest{Item: "b"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_ThenReAddAppends(t *testing.T) {
	state, _, err := domain.Delete(items("a", "b", "c"), domain.DeleteRequest{Item: "a"})
	require.NoError(t, err)
	state, _, err = domain.Add(state, domain.AddRequest{Item: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, state.Items)
}

func TestRules_Capacity(t *testing.T) {
	rules := domain.Rules{Capacity: 2}
	state := items("a", "b")

	_, _, err := rules.Add(state, domain.AddRequest{Item: "c"})
	assert.ErrorIs(t, err, domain.ErrListFull)

	// Duplicates stay a no-op even on a full list.
	next, _, err := rules.Add(state, domain.AddRequest{Item: "a"})
	require.NoError(t, err)
	assert.Equal(t, state, next)

	resp, err := rules.List(items("a"), domain.ListRequest{})
	require.NoError(t, err)
	require.NotNil(t, resp.Remaining)
	assert.Equal(t, 1, *resp.Remaining)
}

func TestParseKind(t *testing.T) {
	k, err := domain.ParseKind("Goal")
	require.NoError(t, err)
	assert.Equal(t, domain.KindGoals, k)

	k, err = domain.ParseKind("tasks")
	require.NoError(t, err)
	assert.Equal(t, domain.KindTasks, k)
	assert.Equal(t, "task", k.Singular())

	_, err = domain.ParseKind("chores")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}
