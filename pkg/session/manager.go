package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/twentyfive/internal/logging"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates instance access, serializing writers per instance ID.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL for the distributed lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(instanceID) after unlocking.
func (m *Manager) acquire(instanceID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[instanceID]
	if !exists {
		entry = &lockEntry{}
		m.locks[instanceID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(instanceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[instanceID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, instanceID)
	}
}

// View loads a snapshot of the instance without taking the instance lock.
// Readers never block writers; they observe the last committed state.
func (m *Manager) View(ctx context.Context, instanceID string) (*domain.Instance, error) {
	return m.store.Load(ctx, instanceID)
}

// Update runs a read-modify-write transaction on one instance.
// fn receives a private copy of the committed state and returns the state to
// commit, or nil to commit nothing. If fn fails, or ctx is canceled before the
// save, nothing is persisted. A missing instance is passed to fn as nil.
func (m *Manager) Update(ctx context.Context, instanceID string, fn func(current *domain.Instance) (*domain.Instance, error)) (*domain.Instance, error) {
	var committed *domain.Instance
	err := m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, instanceID)
		if err != nil {
			if !errors.Is(err, domain.ErrInstanceNotFound) {
				return fmt.Errorf("failed to load instance: %w", err)
			}
			current = nil
		}

		next, err := fn(current.Snapshot())
		if err != nil {
			return err
		}
		if next == nil {
			// Nothing to commit; the stored state stays byte-for-byte unchanged.
			committed = current
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if err := m.store.Save(ctx, instanceID, next); err != nil {
			return fmt.Errorf("failed to commit instance: %w", err)
		}
		committed = next
		return nil
	})
	return committed, err
}

// Load retrieves an existing instance from the store under the instance lock.
func (m *Manager) Load(ctx context.Context, instanceID string) (*domain.Instance, error) {
	var inst *domain.Instance
	err := m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		var err error
		inst, err = m.store.Load(ctx, instanceID)
		return err
	})
	return inst, err
}

// LoadOrCreate tries to load an instance. If not found, it persists a new empty one.
func (m *Manager) LoadOrCreate(ctx context.Context, instanceID string) (*domain.Instance, bool, error) {
	var (
		inst    *domain.Instance
		created bool
	)
	err := m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		var err error
		inst, err = m.store.Load(ctx, instanceID)
		if err == nil {
			return nil
		}

		if !errors.Is(err, domain.ErrInstanceNotFound) {
			return fmt.Errorf("failed to check instance existence: %w", err)
		}

		inst = domain.NewInstance(instanceID)
		inst.UpdatedAt = time.Now().UTC()

		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, instanceID, inst); err != nil {
			return fmt.Errorf("failed to initialize instance: %w", err)
		}
		created = true
		return nil
	})
	return inst, created, err
}

// Save persists the instance state.
func (m *Manager) Save(ctx context.Context, instanceID string, inst *domain.Instance) error {
	return m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		return m.store.Save(ctx, instanceID, inst)
	})
}

// Delete removes the instance from the store.
func (m *Manager) Delete(ctx context.Context, instanceID string) error {
	return m.WithLock(ctx, instanceID, func(ctx context.Context) error {
		return m.store.Delete(ctx, instanceID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock executes a function while holding the lock for the instance.
func (m *Manager) WithLock(ctx context.Context, instanceID string, fn func(context.Context) error) error {
	entry := m.acquire(instanceID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(instanceID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, instanceID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Release with a fresh context so a canceled request still frees the lock.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := unlock(releaseCtx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"instance_id", instanceID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
