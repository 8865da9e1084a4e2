package outbox

import (
	"context"
	"time"

	"github.com/pati-platform/pati-backend/pkg/config"
	"github.com/pati-platform/pati-backend/pkg/logger"
	"github.com/pati-platform/pati-backend/pkg/metrics"
)

// Sender delivers a serialized event to the message broker.
type Sender interface {
	Send(ctx context.Context, eventType string, payload []byte, attributes map[string]string) error
}

// Publisher drains pending outbox rows to the broker on a fixed interval.
type Publisher struct {
	repo    *Repository
	sender  Sender
	cfg     config.OutboxConfig
	logg    *logger.Logger
	metrics *metrics.OutboxMetrics
}

func NewPublisher(repo *Repository, sender Sender, cfg config.OutboxConfig, logg *logger.Logger, m *metrics.OutboxMetrics) *Publisher {
	return &Publisher{repo: repo, sender: sender, cfg: cfg, logg: logg, metrics: m}
}

// Run polls until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	interval := time.Duration(p.cfg.PollIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.DrainOnce(ctx); err != nil {
				if p.logg != nil {
					p.logg.Warn(ctx, "outbox drain failed: "+err.Error())
				}
			}
		}
	}
}

// DrainOnce publishes one batch of pending events. Per-event failures are
// recorded on the row and do not stop the batch.
func (p *Publisher) DrainOnce(ctx context.Context) error {
	batch := p.cfg.BatchSize
	if batch <= 0 {
		batch = 50
	}
	rows, err := p.repo.FetchUnpublished(batch, p.cfg.MaxAttempts)
	if err != nil {
		return err
	}
	for _, row := range rows {
		attrs := map[string]string{
			"eventType":     string(row.EventType),
			"aggregateType": string(row.AggregateType),
			"aggregateId":   row.AggregateID.String(),
		}
		if err := p.sender.Send(ctx, string(row.EventType), row.Payload, attrs); err != nil {
			p.metrics.IncFailure(string(row.EventType))
			if markErr := p.repo.MarkFailed(row.ID, err); markErr != nil {
				return markErr
			}
			continue
		}
		if err := p.repo.MarkPublished(row.ID); err != nil {
			return err
		}
		p.metrics.IncPublished(string(row.EventType))
		p.metrics.ObserveLag(time.Since(row.CreatedAt))
	}
	return nil
}
