package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Kind selects which list of an instance an operation targets.
type Kind string

const (
	KindGoals Kind = "goals"
	KindTasks Kind = "tasks"
)

// Kinds lists every supported list kind in display order.
var Kinds = []Kind{KindGoals, KindTasks}

// ParseKind accepts the plural or singular form, case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "goals", "goal":
		return KindGoals, nil
	case "tasks", "task":
		return KindTasks, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Singular returns the item noun for the kind ("goal" or "task").
func (k Kind) Singular() string {
	return strings.TrimSuffix(string(k), "s")
}

// ListState is an ordered sequence of item values with set-like uniqueness.
// Insertion order is the display order.
type ListState struct {
	Items []string `json:"items" yaml:"items" mapstructure:"items"`
}

// NewListState returns an empty list.
func NewListState() ListState {
	return ListState{Items: []string{}}
}

// Clone returns a copy that shares no backing array with s.
func (s ListState) Clone() ListState {
	items := make([]string, len(s.Items))
	copy(items, s.Items)
	return ListState{Items: items}
}

// Len returns the number of items.
func (s ListState) Len() int {
	return len(s.Items)
}

// IndexOf returns the position of item, or -1.
func (s ListState) IndexOf(item string) int {
	return slices.Index(s.Items, item)
}

// Contains reports whether item is a member.
func (s ListState) Contains(item string) bool {
	return s.IndexOf(item) >= 0
}

// Equal reports whether both lists hold the same items in the same order.
func (s ListState) Equal(other ListState) bool {
	return slices.Equal(s.Items, other.Items)
}
