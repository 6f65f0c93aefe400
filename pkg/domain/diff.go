package domain

// ListDiff describes a committed change to one list of an instance.
// It is designed to be serialized to JSON and pushed to subscribers.
type ListDiff struct {
	InstanceID string `json:"instance_id"`
	Kind       Kind   `json:"kind"`
	Revision   uint64 `json:"revision"`

	// Items is the full list after the change.
	Items []string `json:"items"`

	// Added and Removed are the items that entered or left the list.
	// A pure reorder leaves both empty and sets Reordered.
	Added     []string `json:"added,omitempty"`
	Removed   []string `json:"removed,omitempty"`
	Reordered bool     `json:"reordered,omitempty"`
}

// Diff calculates the change to the list of the given kind between two revisions.
// If oldInst is nil, every item of newInst counts as added (initial load).
// It returns nil when the list did not change.
func Diff(oldInst, newInst *Instance, kind Kind) *ListDiff {
	if newInst == nil {
		return nil
	}

	newList := newInst.List(kind)
	var oldList ListState
	if oldInst != nil {
		oldList = oldInst.List(kind)
	}
	if oldInst != nil && oldList.Equal(newList) {
		return nil
	}

	diff := &ListDiff{
		InstanceID: newInst.ID,
		Kind:       kind,
		Revision:   newInst.Revision,
		Items:      newList.Items,
	}

	for _, item := range newList.Items {
		if !oldList.Contains(item) {
			diff.Added = append(diff.Added, item)
		}
	}
	for _, item := range oldList.Items {
		if !newList.Contains(item) {
			diff.Removed = append(diff.Removed, item)
		}
	}
	diff.Reordered = oldInst != nil && len(diff.Added) == 0 && len(diff.Removed) == 0

	return diff
}
