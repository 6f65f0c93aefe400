package domain

import "time"

// Instance is the persisted unit of a state machine: one list per Kind,
// addressed by ID.
type Instance struct {
	// ID is the opaque instance identifier.
	ID string `json:"id"`

	// Goals and Tasks are the lists owned by the instance.
	Goals ListState `json:"goals"`
	Tasks ListState `json:"tasks"`

	// Revision counts committed writes. Stores persist it verbatim.
	Revision uint64 `json:"revision"`

	// UpdatedAt is the time of the last committed write.
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted instance when it was written through an
	// encrypting store. The lists are empty in that case.
	Sealed string `json:"sealed,omitempty"`
}

// NewInstance creates an instance with empty lists.
func NewInstance(id string) *Instance {
	return &Instance{
		ID:    id,
		Goals: NewListState(),
		Tasks: NewListState(),
	}
}

// List returns a copy of the list of the given kind.
func (i *Instance) List(kind Kind) ListState {
	switch kind {
	case KindTasks:
		return i.Tasks.Clone()
	default:
		return i.Goals.Clone()
	}
}

// WithList returns a copy of the instance with the list of the given kind replaced.
// The receiver is left untouched.
func (i *Instance) WithList(kind Kind, list ListState) *Instance {
	next := i.Snapshot()
	switch kind {
	case KindTasks:
		next.Tasks = list.Clone()
	default:
		next.Goals = list.Clone()
	}
	return next
}

// Snapshot creates a deep copy of the instance.
func (i *Instance) Snapshot() *Instance {
	if i == nil {
		return nil
	}
	return &Instance{
		ID:        i.ID,
		Goals:     i.Goals.Clone(),
		Tasks:     i.Tasks.Clone(),
		Revision:  i.Revision,
		UpdatedAt: i.UpdatedAt,
		Sealed:    i.Sealed,
	}
}
