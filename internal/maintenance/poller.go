package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/models"
)

type ConfigSource interface {
	GetMaintenanceConfig(ctx context.Context) (*models.MaintenanceConfig, error)
}

// Poller re-reads the stored maintenance configuration on a fixed
// interval and swaps it into the router. It is started explicitly by
// the process owner and stops when its context is cancelled.
type Poller struct {
	router   *Router
	source   ConfigSource
	interval time.Duration
}

func NewPoller(router *Router, source ConfigSource, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{router: router, source: source, interval: interval}
}

func (p *Poller) Run(ctx context.Context) {
	interval := p.interval
	p.refresh(ctx, &interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev := interval
			p.refresh(ctx, &interval)
			if interval != prev {
				ticker.Reset(interval)
			}
		}
	}
}

// refresh swaps in the stored config and picks up its poll interval.
func (p *Poller) refresh(ctx context.Context, interval *time.Duration) {
	cfg, err := p.source.GetMaintenanceConfig(ctx)
	if err != nil {
		// Keep serving the last good snapshot.
		slog.Warn("maintenance config refresh failed", "err", err)
		return
	}
	p.router.SetConfig(cfg)
	if cfg.PollIntervalSecs > 0 {
		*interval = time.Duration(cfg.PollIntervalSecs) * time.Second
	}
}
