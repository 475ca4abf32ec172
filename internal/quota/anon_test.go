package quota

import (
	"testing"
	"time"
)

func newTestAnon(t *testing.T) (*AnonQuota, *time.Time) {
	t.Helper()
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewAnonQuota(3, 100, time.UTC)
	a.now = func() time.Time { return current }
	a.store.now = a.now
	return a, &current
}

func TestAnonQuota_DailyCeiling(t *testing.T) {
	a, _ := newTestAnon(t)

	for i := 0; i < 3; i++ {
		if !a.TryConsume("user-1") {
			t.Fatalf("call %d denied before ceiling", i+1)
		}
	}
	if a.TryConsume("user-1") {
		t.Error("call beyond ceiling was granted")
	}

	// Other users are unaffected.
	if !a.TryConsume("user-2") {
		t.Error("independent user denied")
	}
}

func TestAnonQuota_Remaining(t *testing.T) {
	a, _ := newTestAnon(t)

	if got := a.Remaining("u"); got != 3 {
		t.Errorf("fresh remaining = %d, want 3", got)
	}

	a.TryConsume("u")
	a.TryConsume("u")
	if got := a.Remaining("u"); got != 1 {
		t.Errorf("remaining after 2 = %d, want 1", got)
	}

	a.TryConsume("u")
	a.TryConsume("u") // denied
	if got := a.Remaining("u"); got != 0 {
		t.Errorf("remaining at ceiling = %d, want 0 (never negative)", got)
	}
}

func TestAnonQuota_DateRollover(t *testing.T) {
	a, current := newTestAnon(t)

	for i := 0; i < 3; i++ {
		a.TryConsume("u")
	}
	if a.TryConsume("u") {
		t.Fatal("ceiling not enforced before rollover")
	}

	*current = current.AddDate(0, 0, 1)

	// First access after the boundary gets a fresh counter.
	if !a.TryConsume("u") {
		t.Error("call denied after date rollover")
	}
	if got := a.Remaining("u"); got != 2 {
		t.Errorf("remaining after rollover = %d, want 2", got)
	}
}
