// Package cache memoizes derived views. Entries are tagged with the state
// version they were computed from, so a dispatch makes them stale without
// any explicit invalidation.
package cache

import (
	"sync"
	"time"

	"fintrack/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

type versionedEntry[T any] struct {
	version uint64
	value   T
}

// Versioned caches values per key and state version. A lookup with a newer
// version misses and evicts the stale entry.
type Versioned[T any] struct {
	lru *LRUCache[versionedEntry[T]]
}

func NewVersioned[T any](maxSize int, ttl time.Duration) *Versioned[T] {
	return &Versioned[T]{lru: NewLRUCache[versionedEntry[T]](maxSize, ttl)}
}

// Get returns the value stored for key at exactly version.
func (v *Versioned[T]) Get(key string, version uint64) (T, bool) {
	e, ok := v.lru.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	if e.version != version {
		v.lru.Delete(key)
		var zero T
		return zero, false
	}
	return e.value, true
}

func (v *Versioned[T]) Set(key string, version uint64, value T) {
	v.lru.Set(key, versionedEntry[T]{version: version, value: value})
}

// GetOrCompute returns the cached value or stores compute's result.
// Concurrent misses may compute twice; the values are identical.
func (v *Versioned[T]) GetOrCompute(key string, version uint64, compute func() T) T {
	if value, ok := v.Get(key, version); ok {
		return value
	}
	value := compute()
	v.Set(key, version, value)
	return value
}

func (v *Versioned[T]) CleanExpired() int { return v.lru.CleanExpired() }
func (v *Versioned[T]) Size() int         { return v.lru.Size() }

// Manager handles cache lifecycle and cleanup
type Manager struct {
	mu          sync.Mutex
	caches      []Cleaner
	logger      *log.Logger
	started     bool
	stopOnce    sync.Once
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// NewManager creates a new cache manager
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		logger:      logger.WithComponent(log.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, cache)
}

// StartCleanup begins periodic cleanup of all registered caches. Only the
// first call starts the loop.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || interval <= 0 {
		return
	}
	m.started = true
	go m.cleanup(interval)
}

// CleanNow sweeps every registered cache once and returns the number of
// entries removed.
func (m *Manager) CleanNow() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanNow(); n > 0 {
				m.logger.Debug("Expired cache entries removed", "count", n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.cleanupDone
		}
	})
}
