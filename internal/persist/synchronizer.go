package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

const saveTimeout = 10 * time.Second

// Synchronizer loads the document once and writes it back in the
// background, in the order writes were requested.
type Synchronizer struct {
	slot   storage.Slot
	key    string
	logger *log.Logger
	onSave func(error)
	queue  *worker.Queue[core.State]
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithKey overrides the storage key. Empty keys are ignored.
func WithKey(key string) Option {
	return func(s *Synchronizer) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSaveHook registers fn to observe the outcome of each background save.
func WithSaveHook(fn func(error)) Option {
	return func(s *Synchronizer) { s.onSave = fn }
}

// New returns a Synchronizer over slot. The slot is not closed by Close.
func New(slot storage.Slot, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		slot:   slot,
		key:    core.StateKey,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentPersist)
	s.queue = worker.NewQueue("persist", s.write, s.logger)
	return s
}

// Key returns the storage key in use.
func (s *Synchronizer) Key() string { return s.key }

// Load reads the stored document. It reports false when there is nothing
// usable: a missing key, a read failure or a malformed document. The reason
// is logged and never partially applied.
func (s *Synchronizer) Load(ctx context.Context) (core.State, bool) {
	data, err := s.slot.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.InfoContext(ctx, "No stored state, starting from defaults", log.FieldStorageKey, s.key)
		return core.State{}, false
	}
	if err != nil {
		s.logger.LogError(ctx, "Failed to read stored state", err, log.OpLoad,
			log.NewFields().WithStorageKey(s.key).WithErrorType(log.ErrorTypeStorage))
		return core.State{}, false
	}

	state, err := Decode(data)
	if err != nil {
		s.logger.LogError(ctx, "Stored state is malformed, ignoring it", err, log.OpDecode,
			log.NewFields().WithStorageKey(s.key).WithErrorType(log.ErrorTypeMalformed))
		return core.State{}, false
	}

	s.logger.InfoContext(ctx, "Stored state loaded",
		log.FieldStorageKey, s.key,
		"categories", len(state.Categories),
		"expenses", len(state.Expenses))
	return state, true
}

// Save overwrites the stored document with state.
func (s *Synchronizer) Save(ctx context.Context, state core.State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	if err := s.slot.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	s.logger.DebugContext(ctx, "State saved", log.FieldStorageKey, s.key, log.FieldBytes, len(data))
	return nil
}

// Enqueue schedules a Save of state without waiting for it. Failures are
// logged; the caller's state is never touched.
func (s *Synchronizer) Enqueue(state core.State) {
	if !s.queue.Push(state) {
		s.logger.Warn("Save requested after close, dropping", log.FieldStorageKey, s.key)
	}
}

// Flush waits for every enqueued save to finish.
func (s *Synchronizer) Flush() { s.queue.Flush() }

// Close drains pending saves and stops the background writer.
func (s *Synchronizer) Close() error {
	s.queue.Close()
	return nil
}

func (s *Synchronizer) write(ctx context.Context, state core.State) error {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	err := s.Save(ctx, state)
	if err != nil {
		s.logger.LogError(ctx, "Background save failed", err, log.OpSave,
			log.NewFields().WithStorageKey(s.key).WithErrorType(log.ErrorTypeStorage))
	}
	if s.onSave != nil {
		s.onSave(err)
	}
	return nil
}
