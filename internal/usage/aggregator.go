package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/db"
	"github.com/devhive/ai-chat-gateway/internal/models"
)

type AggregateStore interface {
	AggregateUsage(ctx context.Context, f db.UsageFilter, period models.StatsPeriod, zone string, from, toExclusive time.Time) ([]db.UsageBucketRow, error)
}

const statsPageSize = 30

type StatsQuery struct {
	TenantID        int64
	SiteKey         string
	PromptProfileID int64
	Period          models.StatsPeriod
	From            time.Time // inclusive date
	To              time.Time // inclusive date
}

type StatsResult struct {
	Items      []models.UsageStatsItem `json:"items"`
	TotalCount int                     `json:"total_count"`
	TotalPages int                     `json:"total_pages"`
}

// Aggregator answers reporting queries from indexed storage. Buckets
// with no records are zero-filled so the bucket count is a function of
// the requested range alone, which keeps pagination predictable.
type Aggregator struct {
	store AggregateStore
	loc   *time.Location
}

func NewAggregator(store AggregateStore, loc *time.Location) *Aggregator {
	return &Aggregator{store: store, loc: loc}
}

func (a *Aggregator) Query(ctx context.Context, q StatsQuery) (*StatsResult, error) {
	first := bucketStart(q.From, q.Period, a.loc)
	// The walk covers every bucket that intersects [From, To].
	last := bucketStart(q.To, q.Period, a.loc)
	rangeEnd := nextBucket(last, q.Period)

	rows, err := a.store.AggregateUsage(ctx, db.UsageFilter{
		TenantID:        q.TenantID,
		SiteKey:         q.SiteKey,
		PromptProfileID: q.PromptProfileID,
	}, q.Period, a.loc.String(), first, rangeEnd)
	if err != nil {
		return nil, err
	}

	// The store truncates in the reporting zone and hands back
	// zone-local wall-clock bucket starts, so labels come straight
	// from the returned value without another conversion.
	byLabel := make(map[string]db.UsageBucketRow, len(rows))
	for _, row := range rows {
		byLabel[bucketLabel(row.BucketStart, q.Period)] = row
	}

	var items []models.UsageStatsItem
	for start := first; start.Before(rangeEnd); start = nextBucket(start, q.Period) {
		end := nextBucket(start, q.Period).AddDate(0, 0, -1)
		item := models.UsageStatsItem{
			Label:     bucketLabel(start, q.Period),
			StartDate: start,
			EndDate:   end,
		}
		if row, ok := byLabel[item.Label]; ok {
			item.TotalCalls = row.TotalCalls
			item.SuccessCalls = row.SuccessCalls
			item.FailCalls = row.FailCalls
			item.PromptTokens = row.PromptTokens
			item.CompletionTokens = row.CompletionTokens
			if row.AvgLatencyMs != nil {
				item.AvgLatencyMs = *row.AvgLatencyMs
			}
		}
		items = append(items, item)
	}

	return &StatsResult{
		Items:      items,
		TotalCount: len(items),
		TotalPages: (len(items) + statsPageSize - 1) / statsPageSize,
	}, nil
}

// bucketStart truncates t to its bucket anchor: midnight for DAY, the
// ISO week's Monday for WEEK, the first of the month for MONTH. The
// calendar date is read off t as given and anchored in the reporting
// zone, so a query date parsed as UTC midnight still means that
// calendar day, not the previous evening west of UTC.
func bucketStart(t time.Time, period models.StatsPeriod, loc *time.Location) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch period {
	case models.PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case models.PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	default:
		return day
	}
}

func nextBucket(start time.Time, period models.StatsPeriod) time.Time {
	switch period {
	case models.PeriodWeek:
		return start.AddDate(0, 0, 7)
	case models.PeriodMonth:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

func bucketLabel(start time.Time, period models.StatsPeriod) string {
	switch period {
	case models.PeriodWeek:
		y, w := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case models.PeriodMonth:
		return start.Format("2006-01")
	default:
		return start.Format("2006-01-02")
	}
}
