// Package usage persists per-call outcomes and answers time-bucketed
// reporting queries over them.
package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/metrics"
	"github.com/devhive/ai-chat-gateway/internal/models"
)

type RecordStore interface {
	InsertUsageRecord(ctx context.Context, rec *models.UsageRecord) error
}

// Recorder writes usage records off the caller's response path. A write
// failure is logged and counted, never propagated to the caller.
type Recorder struct {
	store RecordStore
}

func NewRecorder(store RecordStore) *Recorder {
	return &Recorder{store: store}
}

func (r *Recorder) Record(rec *models.UsageRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := r.store.InsertUsageRecord(ctx, rec); err != nil {
			metrics.UsageWriteFailuresTotal.Inc()
			slog.Error("usage record write failed",
				"site_key", rec.SiteKey,
				"err", err)
		}
	}()
}
