package quota

import (
	"fmt"
	"time"
)

// AnonQuota is the fixed per-end-user daily ceiling, independent of any
// plan. Counters live in a bounded expiring store so high user
// cardinality cannot grow memory without bound.
type AnonQuota struct {
	store *ExpiringStore
	limit int64
	loc   *time.Location
	now   func() time.Time
}

func NewAnonQuota(limit, capacity int, loc *time.Location) *AnonQuota {
	return &AnonQuota{
		store: NewExpiringStore(capacity, 24*time.Hour),
		limit: int64(limit),
		loc:   loc,
		now:   time.Now,
	}
}

// The date is baked into the counter key, so the first access after a
// date boundary starts a fresh counter; yesterday's entry just ages out.
func (a *AnonQuota) key(userKey string) string {
	return fmt.Sprintf("%s:%s", userKey, a.now().In(a.loc).Format("2006-01-02"))
}

func (a *AnonQuota) TryConsume(userKey string) bool {
	_, ok := a.store.IncrementBelow(a.key(userKey), 1, a.limit)
	return ok
}

// Remaining never goes negative.
func (a *AnonQuota) Remaining(userKey string) int {
	used, _ := a.store.Get(a.key(userKey))
	if used >= a.limit {
		return 0
	}
	return int(a.limit - used)
}
