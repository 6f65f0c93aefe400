package domain

import (
	"context"
	"time"
)

// Verb names an operation of the list service.
type Verb string

const (
	VerbCreate Verb = "create"
	VerbList   Verb = "list"
	VerbAdd    Verb = "add"
	VerbMove   Verb = "move"
	VerbDelete Verb = "delete"
)

// Mode is the access mode an operation runs under.
type Mode string

const (
	ModeReader Mode = "reader" // Snapshot read, no lock, no mutation
	ModeWriter Mode = "writer" // Exclusive, transactional, produces a new state
)

// OperationEvent describes one dispatched operation.
type OperationEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	InstanceID string        `json:"instance_id"`
	Kind       Kind          `json:"kind"`
	Verb       Verb          `json:"verb"`
	Mode       Mode          `json:"mode"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`

	// Diff is set on commits that changed the list.
	Diff *ListDiff `json:"diff,omitempty"`
}

// Hooks defines callbacks for observability and change propagation.
type Hooks struct {
	// OnRead fires after a Reader operation.
	OnRead func(context.Context, *OperationEvent)
	// OnCommit fires after a Writer effect has been persisted.
	OnCommit func(context.Context, *OperationEvent)
	// OnReject fires when an operation failed and nothing was persisted.
	OnReject func(context.Context, *OperationEvent)
}

// ChainHooks combines several hook sets; callbacks run in argument order.
func ChainHooks(sets ...Hooks) Hooks {
	var reads, commits, rejects []func(context.Context, *OperationEvent)
	for _, h := range sets {
		if h.OnRead != nil {
			reads = append(reads, h.OnRead)
		}
		if h.OnCommit != nil {
			commits = append(commits, h.OnCommit)
		}
		if h.OnReject != nil {
			rejects = append(rejects, h.OnReject)
		}
	}
	return Hooks{
		OnRead:   fanout(reads),
		OnCommit: fanout(commits),
		OnReject: fanout(rejects),
	}
}

func fanout(fns []func(context.Context, *OperationEvent)) func(context.Context, *OperationEvent) {
	if len(fns) == 0 {
		return nil
	}
	return func(ctx context.Context, e *OperationEvent) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
