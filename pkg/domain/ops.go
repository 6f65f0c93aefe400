package domain

import (
	"fmt"
	"slices"
)

// CreateRequest resets a list to empty.
type CreateRequest struct{}

// CreateResponse acknowledges a Create.
type CreateResponse struct{}

// ListRequest asks for the current items of a list.
type ListRequest struct{}

// ListResponse is the read projection of a list.
type ListResponse struct {
	Items []string `json:"items"`

	// Remaining is how many items are still missing to reach the capacity.
	// Nil when no capacity is configured.
	Remaining *int `json:"remaining,omitempty"`
}

// AddRequest appends an item unless it is already present.
type AddRequest struct {
	Item string `json:"item"`
}

// AddResponse acknowledges an Add.
type AddResponse struct{}

// MoveRequest repositions an existing item.
type MoveRequest struct {
	Item        string `json:"item"`
	TargetIndex int    `json:"target_index"`
}

// MoveResponse acknowledges a Move.
type MoveResponse struct{}

// DeleteRequest removes an existing item.
type DeleteRequest struct {
	Item string `json:"item"`
}

// DeleteResponse acknowledges a Delete.
type DeleteResponse struct{}

// Rules holds the list handlers. The zero value imposes no capacity.
//
// Every handler is a pure function of its arguments: it never mutates the
// state it receives and, on error, returns that state untouched.
type Rules struct {
	// Capacity caps the number of items per list. Zero means unlimited.
	Capacity int
}

// DefaultRules are the handlers with no capacity limit.
var DefaultRules = Rules{}

// Create returns a fresh empty list, discarding any prior content.
func (r Rules) Create(_ ListState, _ CreateRequest) (ListState, CreateResponse, error) {
	return NewListState(), CreateResponse{}, nil
}

// List projects the items verbatim.
func (r Rules) List(state ListState, _ ListRequest) (ListResponse, error) {
	resp := ListResponse{Items: state.Clone().Items}
	if r.Capacity > 0 {
		remaining := max(r.Capacity-state.Len(), 0)
		resp.Remaining = &remaining
	}
	return resp, nil
}

// Add appends item to the end. Adding an item that is already present is a
// successful no-op.
func (r Rules) Add(state ListState, req AddRequest) (ListState, AddResponse, error) {
	if req.Item == "" {
		return state, AddResponse{}, ErrEmptyItem
	}
	if state.Contains(req.Item) {
		return state, AddResponse{}, nil
	}
	if r.Capacity > 0 && state.Len() >= r.Capacity {
		return state, AddResponse{}, fmt.Errorf("%w: capacity %d", ErrListFull, r.Capacity)
	}

	next := state.Clone()
	next.Items = append(next.Items, req.Item)
	return next, AddResponse{}, nil
}

// Move removes item from its position and reinserts it at TargetIndex.
// The index is validated against the list with the item removed, so valid
// targets are 0 through Len()-1.
func (r Rules) Move(state ListState, req MoveRequest) (ListState, MoveResponse, error) {
	idx := state.IndexOf(req.Item)
	if idx < 0 {
		return state, MoveResponse{}, fmt.Errorf("%w: %q", ErrNotFound, req.Item)
	}

	rest := slices.Delete(state.Clone().Items, idx, idx+1)
	if req.TargetIndex < 0 || req.TargetIndex > len(rest) {
		return state, MoveResponse{}, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidIndex, req.TargetIndex, len(rest))
	}

	return ListState{Items: slices.Insert(rest, req.TargetIndex, req.Item)}, MoveResponse{}, nil
}

// Delete removes the only occurrence of item.
func (r Rules) Delete(state ListState, req DeleteRequest) (ListState, DeleteResponse, error) {
	idx := state.IndexOf(req.Item)
	if idx < 0 {
		return state, DeleteResponse{}, fmt.Errorf("%w: %q", ErrNotFound, req.Item)
	}
	return ListState{Items: slices.Delete(state.Clone().Items, idx, idx+1)}, DeleteResponse{}, nil
}

// Create resets a list using DefaultRules.
func Create(state ListState, req CreateRequest) (ListState, CreateResponse, error) {
	return DefaultRules.Create(state, req)
}

// List projects a list using DefaultRules.
func List(state ListState, req ListRequest) (ListResponse, error) {
	return DefaultRules.List(state, req)
}

// Add appends to a list using DefaultRules.
func Add(state ListState, req AddRequest) (ListState, AddResponse, error) {
	return DefaultRules.Add(state, req)
}

// Move repositions within a list using DefaultRules.
func Move(state ListState, req MoveRequest) (ListState, MoveResponse, error) {
	return DefaultRules.Move(state, req)
}

// Delete removes from a list using DefaultRules.
func Delete(state ListState, req DeleteRequest) (ListState, DeleteResponse, error) {
	return DefaultRules.Delete(state, req)
}
