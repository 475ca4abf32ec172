// Package quota tracks per-key daily/monthly plan consumption and the
// fixed anonymous per-user ceiling.
package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	dayKeyTTL   = 48 * time.Hour
	monthKeyTTL = 40 * 24 * time.Hour
)

// CounterStore is the counter backend the plan quota runs on. The
// production store is Redis; tests run against an in-memory one.
type CounterStore interface {
	MGet(ctx context.Context, keys ...string) ([]interface{}, error)
	Incr(ctx context.Context, key string) (int64, error)
	Decr(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, n int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Close() error
}

type redisCounters struct {
	client *redis.Client
}

func (r *redisCounters) MGet(ctx context.Context, keys ...string) ([]interface{}, error) {
	return r.client.MGet(ctx, keys...).Result()
}

func (r *redisCounters) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

func (r *redisCounters) Decr(ctx context.Context, key string) (int64, error) {
	return r.client.Decr(ctx, key).Result()
}

func (r *redisCounters) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	return r.client.IncrBy(ctx, key, n).Result()
}

func (r *redisCounters) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Expire(ctx, key, ttl).Err()
}

func (r *redisCounters) Close() error {
	return r.client.Close()
}

// PlanQuota enforces a site key's plan ceilings. Call counting is hard
// (increment-or-reject); token ceilings are soft: sums are added after a
// call completes and only gate the next admission.
type PlanQuota struct {
	store CounterStore
	loc   *time.Location
	now   func() time.Time
}

func NewPlanQuota(redisURL string, loc *time.Location) (*PlanQuota, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return NewPlanQuotaWithStore(&redisCounters{client: redis.NewClient(opt)}, loc), nil
}

func NewPlanQuotaWithStore(store CounterStore, loc *time.Location) *PlanQuota {
	return &PlanQuota{
		store: store,
		loc:   loc,
		now:   time.Now,
	}
}

func (q *PlanQuota) Close() error {
	return q.store.Close()
}

func (q *PlanQuota) callKey(siteKey string) string {
	return fmt.Sprintf("quota:call:%s:%s", siteKey, q.now().In(q.loc).Format("2006-01-02"))
}

func (q *PlanQuota) dayTokenKey(siteKey string) string {
	return fmt.Sprintf("quota:tok:%s:%s", siteKey, q.now().In(q.loc).Format("2006-01-02"))
}

func (q *PlanQuota) monthTokenKey(siteKey string) string {
	return fmt.Sprintf("quota:tok:%s:%s", siteKey, q.now().In(q.loc).Format("2006-01"))
}

// TryConsumeCall admits or rejects one call. The day bucket is created
// lazily by the first INCR after a date boundary; stale buckets expire
// on their own TTL.
func (q *PlanQuota) TryConsumeCall(ctx context.Context, sk *models.SiteKey) (bool, error) {
	// Token ceilings first: a key already over its daily or monthly
	// token sum is blocked before the call counter moves.
	vals, err := q.store.MGet(ctx, q.dayTokenKey(sk.Key), q.monthTokenKey(sk.Key))
	if err != nil {
		return false, err
	}
	if sk.DailyTokenLimit > 0 && asInt64(vals[0]) >= sk.DailyTokenLimit {
		return false, nil
	}
	if sk.MonthlyTokenLimit > 0 && asInt64(vals[1]) >= sk.MonthlyTokenLimit {
		return false, nil
	}

	key := q.callKey(sk.Key)
	count, err := q.store.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		q.store.Expire(ctx, key, dayKeyTTL)
	}
	if sk.DailyCallLimit > 0 && count > sk.DailyCallLimit {
		q.store.Decr(ctx, key)
		return false, nil
	}
	return true, nil
}

// AddTokens records a completed call's token usage against the daily and
// monthly sums.
func (q *PlanQuota) AddTokens(ctx context.Context, siteKey string, tokens int64) error {
	if tokens <= 0 {
		return nil
	}

	dayKey := q.dayTokenKey(siteKey)
	monthKey := q.monthTokenKey(siteKey)

	day, err := q.store.IncrBy(ctx, dayKey, tokens)
	if err != nil {
		return err
	}
	if day == tokens {
		q.store.Expire(ctx, dayKey, dayKeyTTL)
	}

	month, err := q.store.IncrBy(ctx, monthKey, tokens)
	if err != nil {
		return err
	}
	if month == tokens {
		q.store.Expire(ctx, monthKey, monthKeyTTL)
	}
	return nil
}

func asInt64(v interface{}) int64 {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
