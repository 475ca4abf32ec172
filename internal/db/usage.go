package db

import (
	"context"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/models"
)

func (db *DB) InsertUsageRecord(ctx context.Context, rec *models.UsageRecord) error {
	query := `
        INSERT INTO usage_records
            (tenant_id, site_key, prompt_profile_id, timestamp, success,
             prompt_tokens, completion_tokens, latency_ms)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := db.Pool.Exec(ctx, query,
		rec.TenantID,
		rec.SiteKey,
		rec.PromptProfileID,
		rec.Timestamp,
		rec.Success,
		rec.PromptTokens,
		rec.CompletionTokens,
		rec.LatencyMs,
	)
	return err
}

// UsageBucketRow is one non-empty aggregation bucket as returned by the
// database; zero-filling of the requested range happens above this layer.
type UsageBucketRow struct {
	BucketStart      time.Time
	TotalCalls       int64
	SuccessCalls     int64
	FailCalls        int64
	PromptTokens     int64
	CompletionTokens int64
	AvgLatencyMs     *float64
}

type UsageFilter struct {
	TenantID        int64
	SiteKey         string
	PromptProfileID int64
}

// AggregateUsage groups records into calendar buckets of the given
// reporting zone: timestamps are shifted to that zone's wall clock
// before truncation, so bucket boundaries are that zone's midnights.
// BucketStart comes back as zone-local wall-clock time. Postgres
// date_trunc('week') anchors to the ISO week start, which is the
// contract for WEEK buckets. AVG skips rows with no recorded latency.
func (db *DB) AggregateUsage(ctx context.Context, f UsageFilter, period models.StatsPeriod, zone string, from, toExclusive time.Time) ([]UsageBucketRow, error) {
	trunc := "day"
	switch period {
	case models.PeriodWeek:
		trunc = "week"
	case models.PeriodMonth:
		trunc = "month"
	}

	query := `
        SELECT date_trunc($1, timestamp AT TIME ZONE $2) AS bucket,
               COUNT(*),
               COUNT(*) FILTER (WHERE success),
               COUNT(*) FILTER (WHERE NOT success),
               COALESCE(SUM(prompt_tokens), 0),
               COALESCE(SUM(completion_tokens), 0),
               AVG(latency_ms)
        FROM usage_records
        WHERE timestamp >= $3 AND timestamp < $4
          AND ($5 = 0 OR tenant_id = $5)
          AND ($6 = '' OR site_key = $6)
          AND ($7 = 0 OR prompt_profile_id = $7)
        GROUP BY bucket
        ORDER BY bucket
    `
	rows, err := db.Pool.Query(ctx, query, trunc, zone, from, toExclusive,
		f.TenantID, f.SiteKey, f.PromptProfileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []UsageBucketRow
	for rows.Next() {
		var b UsageBucketRow
		if err := rows.Scan(
			&b.BucketStart,
			&b.TotalCalls,
			&b.SuccessCalls,
			&b.FailCalls,
			&b.PromptTokens,
			&b.CompletionTokens,
			&b.AvgLatencyMs,
		); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
