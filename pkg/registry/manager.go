package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// ErrCollectionExists is returned by Create when the ID is already taken.
var ErrCollectionExists = errors.New("collection already exists")

// lockEntry holds one collection's mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to named, persisted collections. All writes to
// one collection serialize on a per-ID lock; the lock map garbage collects
// itself through reference counting. With a DistributedLocker configured the
// same exclusion extends across replicas sharing a store.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.UpdateHooks
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking on top of the in-process locks.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for internal events, such as deferred
// release failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks attaches observability hooks to every reconcile the manager
// runs. Metrics collectors plug in here.
func WithHooks(hooks domain.UpdateHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a collection manager over the given store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and pair this with release(id).
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the collection's lock, and the
// distributed lock when one is configured.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock, it will expire via TTL",
					"collection_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Create persists a new collection under the given ID. Passing nil initial
// content creates an empty collection. The ID must be free.
func (m *Manager) Create(ctx context.Context, id string, initial *domain.Snapshot) error {
	if initial == nil {
		initial = &domain.Snapshot{}
	}
	if err := initial.Validate(); err != nil {
		return fmt.Errorf("invalid initial snapshot: %w", err)
	}

	return m.WithLock(ctx, id, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, id)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrCollectionExists, id)
		}
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			return fmt.Errorf("failed to check collection existence: %w", err)
		}
		return m.store.Save(ctx, id, initial)
	})
}

// Load retrieves a collection's snapshot.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, id)
		return err
	})
	return snap, err
}

// Save overwrites a collection's snapshot wholesale. Unlike Ensure it
// produces no edit script; callers that need one use Ensure.
func (m *Manager) Save(ctx context.Context, id string, snap *domain.Snapshot) error {
	if snap == nil {
		snap = &domain.Snapshot{}
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, snap)
	})
}

// Delete removes the collection from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List returns the known collection IDs.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// Ensure reconciles the stored collection toward desired and persists the
// result, all under the collection's lock. It returns the edit script that
// was applied. Section titles and row fields of retained items are synced as
// replace ops. An unknown ID reports domain.ErrSnapshotNotFound. Hooks
// registered with WithHooks observe each reconcile, including no-op ones.
func (m *Manager) Ensure(ctx context.Context, id string, desired *domain.Snapshot) (domain.Script, error) {
	if desired == nil {
		desired = &domain.Snapshot{}
	}
	if err := desired.Validate(); err != nil {
		return nil, fmt.Errorf("invalid desired snapshot: %w", err)
	}

	var script domain.Script
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}

		ctrl := espalier.NewSnapshotController(current,
			espalier.WithHooks[domain.SectionSnapshot, domain.RowSnapshot](m.hooks),
			espalier.WithSectionContentSync[domain.SectionSnapshot, domain.RowSnapshot](domain.SectionContentEqual),
			espalier.WithRowContentSync[domain.SectionSnapshot, domain.RowSnapshot](domain.RowContentEqual),
		)
		script, err = ctrl.Ensure(desired.Sections)
		if err != nil {
			return err
		}
		if script.IsEmpty() {
			return nil
		}

		m.logger.Debug("collection reconciled",
			"collection_id", id,
			"ops", len(script),
		)
		return m.store.Save(ctx, id, &domain.Snapshot{Sections: ctrl.List().Snapshot()})
	})
	if err != nil {
		return nil, err
	}
	return script, nil
}
