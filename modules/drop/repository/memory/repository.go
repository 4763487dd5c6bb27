// Package memory is a process-local implementation of the drop data gateway.
// Transactions work on a private snapshot that replaces the shared state on
// commit; writers are serialized.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/drop-offerer/modules/drop/datagateway"
)

var (
	ErrTxAlreadyExists = errors.New("Transaction already exists. Call Commit() or Rollback() first.")
	ErrTxClosed        = errors.New("Transaction already closed.")
)

var _ datagateway.DropDataGatewayWithTx = (*Repository)(nil)

type store struct {
	mu      sync.RWMutex // guards current
	writeMu sync.Mutex   // held for the lifetime of a write or transaction
	current *state
	clock   func() time.Time
}

type Repository struct {
	store *store
	tx    *state
	done  bool
}

type Option func(*store)

// WithClock overrides the clock used to timestamp events.
func WithClock(clock func() time.Time) Option {
	return func(s *store) {
		s.clock = clock
	}
}

func NewRepository(opts ...Option) *Repository {
	s := &store{
		current: newState(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return &Repository{store: s}
}

func (r *Repository) BeginDropTx(ctx context.Context) (datagateway.DropDataGatewayWithTx, error) {
	if r.tx != nil {
		return nil, errors.WithStack(ErrTxAlreadyExists)
	}
	r.store.writeMu.Lock()
	r.store.mu.RLock()
	snapshot := r.store.current.clone()
	r.store.mu.RUnlock()
	return &Repository{store: r.store, tx: snapshot}, nil
}

func (r *Repository) Commit(ctx context.Context) error {
	if r.tx == nil || r.done {
		return nil
	}
	r.store.mu.Lock()
	r.store.current = r.tx
	r.store.mu.Unlock()
	r.done = true
	r.store.writeMu.Unlock()
	return nil
}

func (r *Repository) Rollback(ctx context.Context) error {
	if r.tx == nil || r.done {
		return nil
	}
	r.done = true
	r.store.writeMu.Unlock()
	return nil
}

func (r *Repository) view(fn func(s *state) error) error {
	if r.tx != nil {
		if r.done {
			return errors.WithStack(ErrTxClosed)
		}
		return fn(r.tx)
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return fn(r.store.current)
}

// update applies fn to the transaction snapshot, or outside a transaction
// to a copy that replaces the shared state only if fn succeeds.
func (r *Repository) update(fn func(s *state) error) error {
	if r.tx != nil {
		if r.done {
			return errors.WithStack(ErrTxClosed)
		}
		return fn(r.tx)
	}
	r.store.writeMu.Lock()
	defer r.store.writeMu.Unlock()

	r.store.mu.RLock()
	next := r.store.current.clone()
	r.store.mu.RUnlock()
	if err := fn(next); err != nil {
		return err
	}
	r.store.mu.Lock()
	r.store.current = next
	r.store.mu.Unlock()
	return nil
}
