package quota

import (
	"fmt"
	"testing"
	"time"
)

func TestExpiringStore_IncrementAndGet(t *testing.T) {
	s := NewExpiringStore(10, time.Hour)

	if got := s.Increment("a", 1); got != 1 {
		t.Errorf("first increment = %d, want 1", got)
	}
	if got := s.Increment("a", 2); got != 3 {
		t.Errorf("second increment = %d, want 3", got)
	}

	v, ok := s.Get("a")
	if !ok || v != 3 {
		t.Errorf("Get = %d, %v, want 3, true", v, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get on missing key reported a hit")
	}
}

func TestExpiringStore_TTLExpiry(t *testing.T) {
	s := NewExpiringStore(10, time.Hour)
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.Increment("a", 5)

	current = current.Add(2 * time.Hour)
	if _, ok := s.Get("a"); ok {
		t.Error("expired entry still visible")
	}
	// A write after expiry starts fresh.
	if got := s.Increment("a", 1); got != 1 {
		t.Errorf("increment after expiry = %d, want 1", got)
	}
}

func TestExpiringStore_CapacityCap(t *testing.T) {
	s := NewExpiringStore(3, time.Hour)

	for i := 0; i < 10; i++ {
		s.Increment(fmt.Sprintf("key-%d", i), 1)
		if s.Len() > 3 {
			t.Fatalf("store grew to %d entries, cap is 3", s.Len())
		}
	}

	// The newest keys survive, the oldest were evicted.
	if _, ok := s.Get("key-9"); !ok {
		t.Error("newest key was evicted")
	}
	if _, ok := s.Get("key-0"); ok {
		t.Error("oldest key survived past the cap")
	}
}

func TestExpiringStore_IncrementBelow(t *testing.T) {
	s := NewExpiringStore(10, time.Hour)

	for i := 1; i <= 3; i++ {
		v, ok := s.IncrementBelow("u", 1, 3)
		if !ok || v != int64(i) {
			t.Fatalf("attempt %d: got %d, %v", i, v, ok)
		}
	}
	if _, ok := s.IncrementBelow("u", 1, 3); ok {
		t.Error("increment past max was applied")
	}
	if v, _ := s.Get("u"); v != 3 {
		t.Errorf("value after rejected increment = %d, want 3", v)
	}
}
