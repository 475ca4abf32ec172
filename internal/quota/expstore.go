package quota

import (
	"container/list"
	"sync"
	"time"
)

// ExpiringStore is a bounded counter store with a fixed per-entry TTL.
// Entries share one TTL, so insertion order equals expiry order and
// eviction is a FIFO walk: expired entries are dropped lazily on write,
// and when the capacity cap is hit the entry closest to expiry goes.
// There is no background sweep.
type ExpiringStore struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*list.Element
	order    *list.List
	now      func() time.Time
}

type storeEntry struct {
	key       string
	value     int64
	expiresAt time.Time
}

func NewExpiringStore(capacity int, ttl time.Duration) *ExpiringStore {
	if capacity < 1 {
		capacity = 1
	}
	return &ExpiringStore{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the counter value; an expired entry is a miss.
func (s *ExpiringStore) Get(key string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	e := el.Value.(*storeEntry)
	if !s.now().Before(e.expiresAt) {
		s.remove(el)
		return 0, false
	}
	return e.value, true
}

// GetOrInsert returns the live counter for key, inserting initial when
// the key is absent or expired.
func (s *ExpiringStore) GetOrInsert(key string, initial int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key, initial).value
}

// Increment adds delta to the counter, inserting at delta when absent or
// expired, and returns the new value.
func (s *ExpiringStore) Increment(key string, delta int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(key, 0)
	e.value += delta
	return e.value
}

// IncrementBelow increments only while the current value is below max.
// It returns the resulting value and whether the increment was applied.
func (s *ExpiringStore) IncrementBelow(key string, delta, max int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(key, 0)
	if e.value >= max {
		return e.value, false
	}
	e.value += delta
	return e.value, true
}

func (s *ExpiringStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// live returns the entry for key, replacing an expired one and inserting
// with initial when absent. Caller holds the lock.
func (s *ExpiringStore) live(key string, initial int64) *storeEntry {
	if el, ok := s.entries[key]; ok {
		e := el.Value.(*storeEntry)
		if s.now().Before(e.expiresAt) {
			return e
		}
		s.remove(el)
	}

	s.dropExpired()
	for s.order.Len() >= s.capacity {
		s.remove(s.order.Front())
	}

	e := &storeEntry{key: key, value: initial, expiresAt: s.now().Add(s.ttl)}
	s.entries[key] = s.order.PushBack(e)
	return e
}

func (s *ExpiringStore) dropExpired() {
	now := s.now()
	for el := s.order.Front(); el != nil; {
		e := el.Value.(*storeEntry)
		if now.Before(e.expiresAt) {
			return
		}
		next := el.Next()
		s.remove(el)
		el = next
	}
}

func (s *ExpiringStore) remove(el *list.Element) {
	e := el.Value.(*storeEntry)
	delete(s.entries, e.key)
	s.order.Remove(el)
}
