// Package store owns the live state. Consumers read snapshots, send actions
// through Dispatch and observe the result through subscriptions; the store
// keeps the durable copy in step behind their backs.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/engine"
	"fintrack/internal/log"
)

var (
	// ErrLoading is returned by Dispatch until Hydrate has run.
	ErrLoading   = errors.New("state is still loading")
	ErrNilAction = errors.New("nil action")
)

// Persister is the durable side of the store.
type Persister interface {
	Load(ctx context.Context) (core.State, bool)
	Enqueue(state core.State)
	Close() error
}

// Recorder receives dispatch outcomes. metrics.Recorder implements it.
type Recorder interface {
	Dispatched(action string)
	Rejected(action, reason string)
	Version(v uint64)
}

// Change describes one applied action. State is shared between
// subscribers and must be treated as read-only.
type Change struct {
	Version uint64
	Action  engine.Action
	State   core.State
	At      time.Time
}

// Snapshot is a consistent view of the store at one version.
type Snapshot struct {
	State   core.State
	Version uint64
	Loading bool
}

type subscriber struct {
	id int
	fn func(Change)
}

// Store serializes every mutation behind one mutex.
type Store struct {
	persister Persister
	reducer   engine.Reducer
	strict    bool
	logger    *log.Logger
	recorder  Recorder
	now       func() time.Time

	mu      sync.Mutex
	state   core.State
	version uint64
	loading bool
	subs    []subscriber
	nextSub int

	hydrateOnce sync.Once
	loaded      bool
}

// Option configures a Store.
type Option func(*Store)

// WithStrictReferences makes Dispatch reject actions naming unknown
// categories with an *engine.ReferenceError.
func WithStrictReferences(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithReducer replaces the engine used to apply actions, mostly to pin
// clocks and ids in tests.
func WithReducer(r engine.Reducer) Option {
	return func(s *Store) { s.reducer = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a store holding the default state, loading until Hydrate.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		logger:    log.Discard(),
		now:       time.Now,
		state:     core.DefaultState(),
		loading:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentStore)
	return s
}

// Hydrate loads the stored document once. Loading flips to false whether or
// not a usable document was found, and the resulting state is written back.
// Later calls return the first result without touching storage.
func (s *Store) Hydrate(ctx context.Context) bool {
	s.hydrateOnce.Do(func() {
		loaded, ok := s.persister.Load(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()

		if ok {
			a := engine.SetState{State: loaded}
			s.apply(a)
			s.logger.InfoContext(ctx, "State hydrated from storage",
				log.FieldStateVersion, s.version,
				"categories", len(s.state.Categories),
				"expenses", len(s.state.Expenses))
		} else {
			s.logger.InfoContext(ctx, "Starting with default state")
		}
		s.loaded = ok
		s.loading = false
		s.persister.Enqueue(s.state)
	})
	return s.loaded
}

// Dispatch applies a to the current state. Subscribers see the change
// before Dispatch returns and the durable write is queued; storage failures
// never reach the caller. Adds reusing an existing id fail with an
// *engine.DuplicateError in either reference mode.
func (s *Store) Dispatch(ctx context.Context, a engine.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(ctx, a)
}

// DispatchSnapshot is Dispatch returning the snapshot the action produced,
// read before any other dispatch can run.
func (s *Store) DispatchSnapshot(ctx context.Context, a engine.Action) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.dispatch(ctx, a); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// dispatch checks and applies a. Callers hold mu.
func (s *Store) dispatch(ctx context.Context, a engine.Action) error {
	if a == nil {
		return ErrNilAction
	}
	actionType := string(a.Type())

	if s.loading {
		s.reject(actionType, "loading")
		return ErrLoading
	}
	if err := engine.CheckUnique(s.state, a); err != nil {
		s.reject(actionType, "duplicate")
		s.logger.WarnContext(ctx, "Action rejected",
			log.NewFields().WithAction(actionType, s.version).
				WithError(err).WithErrorType(log.ErrorTypeValidation).ToSlice()...)
		return err
	}
	if s.strict {
		if err := engine.CheckReferences(s.state, a); err != nil {
			s.reject(actionType, "reference")
			s.logger.WarnContext(ctx, "Action rejected",
				log.NewFields().WithAction(actionType, s.version).
					WithError(err).WithErrorType(log.ErrorTypeReference).ToSlice()...)
			return err
		}
	}

	s.apply(a)
	s.persister.Enqueue(s.state)

	if s.recorder != nil {
		s.recorder.Dispatched(actionType)
	}
	s.logger.DebugContext(ctx, "Action applied",
		log.NewFields().WithAction(actionType, s.version).WithOperation(log.OpDispatch).ToSlice()...)
	return nil
}

// apply runs the reducer and fans the change out. Callers hold mu.
func (s *Store) apply(a engine.Action) {
	s.state = s.reducer.Reduce(s.state, a)
	s.version++
	if s.recorder != nil {
		s.recorder.Version(s.version)
	}
	if len(s.subs) == 0 {
		return
	}
	change := Change{
		Version: s.version,
		Action:  a,
		State:   s.state.Clone(),
		At:      s.now(),
	}
	for _, sub := range s.subs {
		sub.fn(change)
	}
}

func (s *Store) reject(actionType, reason string) {
	if s.recorder != nil {
		s.recorder.Rejected(actionType, reason)
	}
}

// State returns a copy of the current state.
func (s *Store) State() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot returns state, version and loading flag read together.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{State: s.state.Clone(), Version: s.version, Loading: s.loading}
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Version counts applied actions, hydration included.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers fn for every subsequent change, called in dispatch
// order while the store is locked. fn must not call back into the store.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
		})
	}
}

// Close drains pending writes.
func (s *Store) Close() error {
	return s.persister.Close()
}
