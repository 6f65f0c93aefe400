package servicer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/twentyfive/internal/logging"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/session"
)

// Call addresses one operation: which instance, which list, which request.
type Call struct {
	InstanceID string
	Kind       domain.Kind
	Request    any
}

// Servicer dispatches list operations against instances held by a session.Manager.
type Servicer struct {
	sessions *session.Manager
	rules    domain.Rules
	hooks    domain.Hooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Servicer.
type Option func(*Servicer)

// WithCapacity caps the number of items per list (0 = unlimited).
func WithCapacity(n int) Option {
	return func(s *Servicer) {
		s.rules.Capacity = n
	}
}

// WithHooks registers lifecycle hooks. Repeated calls chain the hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Servicer) {
		s.hooks = domain.ChainHooks(s.hooks, hooks)
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Servicer) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Servicer) {
		s.now = now
	}
}

// New creates a Servicer on top of the given session manager.
func New(sessions *session.Manager, opts ...Option) *Servicer {
	s := &Servicer{
		sessions: sessions,
		rules:    domain.DefaultRules,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the handler set in use.
func (s *Servicer) Rules() domain.Rules {
	return s.rules
}

// Handle routes a call to its handler and enforces the handler's access mode.
func (s *Servicer) Handle(ctx context.Context, call Call) (any, error) {
	verb, err := VerbOf(call.Request)
	if err != nil {
		return nil, err
	}
	rt, ok := routes[verb]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
	if call.InstanceID == "" {
		return nil, fmt.Errorf("%w: instance id is required", ErrBadRequest)
	}
	if _, err := domain.ParseKind(string(call.Kind)); err != nil {
		return nil, err
	}

	req, err := sanitizeRequest(call.Request)
	if err != nil {
		return nil, err
	}

	event := &domain.OperationEvent{
		Timestamp:  s.now(),
		InstanceID: call.InstanceID,
		Kind:       call.Kind,
		Verb:       verb,
		Mode:       rt.mode,
	}
	start := time.Now()

	var resp any
	switch rt.mode {
	case domain.ModeReader:
		resp, err = s.read(ctx, rt, call, req)
		event.Duration = time.Since(start)
		event.Err = err
		if err == nil {
			s.fire(ctx, s.hooks.OnRead, event)
			return resp, nil
		}
	default:
		resp, event.Diff, err = s.write(ctx, rt, call, req)
		event.Duration = time.Since(start)
		event.Err = err
		if err == nil {
			s.logger.Debug("Committed",
				"instance_id", call.InstanceID,
				"kind", call.Kind,
				"verb", verb,
				"changed", event.Diff != nil,
			)
			s.fire(ctx, s.hooks.OnCommit, event)
			return resp, nil
		}
	}

	s.logger.Debug("Rejected",
		"instance_id", call.InstanceID,
		"kind", call.Kind,
		"verb", verb,
		"err", err,
	)
	s.fire(ctx, s.hooks.OnReject, event)
	return nil, err
}

// read serves a Reader from a committed snapshot, without the instance lock.
func (s *Servicer) read(ctx context.Context, rt route, call Call, req any) (any, error) {
	inst, err := s.sessions.View(ctx, call.InstanceID)
	if err != nil {
		return nil, err
	}
	return rt.read(s.rules, inst.List(call.Kind), req)
}

// write runs a Writer inside a session transaction. A writer on a missing
// instance starts from an empty one. Effects that leave the list unchanged on an
// existing instance are not persisted.
func (s *Servicer) write(ctx context.Context, rt route, call Call, req any) (any, *domain.ListDiff, error) {
	var (
		resp any
		diff *domain.ListDiff
	)
	_, err := s.sessions.Update(ctx, call.InstanceID, func(current *domain.Instance) (*domain.Instance, error) {
		existed := current != nil
		if !existed {
			current = domain.NewInstance(call.InstanceID)
		}

		before := current.List(call.Kind)
		after, r, err := rt.write(s.rules, before, req)
		if err != nil {
			return nil, err
		}
		resp = r

		if existed && before.Equal(after) {
			return nil, nil
		}

		next := current.WithList(call.Kind, after)
		next.ID = call.InstanceID
		next.Revision = current.Revision + 1
		next.UpdatedAt = s.now().UTC()

		diff = domain.Diff(current, next, call.Kind)
		if diff == nil && !existed {
			diff = domain.Diff(nil, next, call.Kind)
		}
		return next, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return resp, diff, nil
}

func (s *Servicer) fire(ctx context.Context, hook func(context.Context, *domain.OperationEvent), e *domain.OperationEvent) {
	if hook != nil {
		hook(ctx, e)
	}
}

// CreateList resets the list of the given kind to empty, creating the instance if needed.
func (s *Servicer) CreateList(ctx context.Context, instanceID string, kind domain.Kind) error {
	_, err := s.Handle(ctx, Call{InstanceID: instanceID, Kind: kind, Request: domain.CreateRequest{}})
	return err
}

// ListItems returns the items of a list in display order.
func (s *Servicer) ListItems(ctx context.Context, instanceID string, kind domain.Kind) (domain.ListResponse, error) {
	resp, err := s.Handle(ctx, Call{InstanceID: instanceID, Kind: kind, Request: domain.ListRequest{}})
	if err != nil {
		return domain.ListResponse{}, err
	}
	return resp.(domain.ListResponse), nil
}

// AddItem appends item unless it is already present.
func (s *Servicer) AddItem(ctx context.Context, instanceID string, kind domain.Kind, item string) error {
	_, err := s.Handle(ctx, Call{InstanceID: instanceID, Kind: kind, Request: domain.AddRequest{Item: item}})
	return err
}

// MoveItem repositions an existing item at targetIndex.
func (s *Servicer) MoveItem(ctx context.Context, instanceID string, kind domain.Kind, item string, targetIndex int) error {
	_, err := s.Handle(ctx, Call{InstanceID: instanceID, Kind: kind, Request: domain.MoveRequest{Item: item, TargetIndex: targetIndex}})
	return err
}

// DeleteItem removes an existing item.
func (s *Servicer) DeleteItem(ctx context.Context, instanceID string, kind domain.Kind, item string) error {
	_, err := s.Handle(ctx, Call{InstanceID: instanceID, Kind: kind, Request: domain.DeleteRequest{Item: item}})
	return err
}

// Snapshot returns a committed copy of the whole instance.
func (s *Servicer) Snapshot(ctx context.Context, instanceID string) (*domain.Instance, error) {
	return s.sessions.View(ctx, instanceID)
}

// Instances lists the IDs of all stored instances.
func (s *Servicer) Instances(ctx context.Context) ([]string, error) {
	return s.sessions.List(ctx)
}

// Seed bootstraps an instance: it is created if missing and the given items are
// added to each list. Items already present are left where they are.
func (s *Servicer) Seed(ctx context.Context, instanceID string, items map[domain.Kind][]string) error {
	_, created, err := s.sessions.LoadOrCreate(ctx, instanceID)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("Instance created", "instance_id", instanceID)
	}

	for _, kind := range domain.Kinds {
		for _, item := range items[kind] {
			err := s.AddItem(ctx, instanceID, kind, item)
			if err != nil && !errors.Is(err, domain.ErrListFull) {
				return fmt.Errorf("failed to seed %s %q: %w", kind.Singular(), item, err)
			}
		}
	}
	return nil
}
