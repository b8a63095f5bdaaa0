package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// Mailer delivers a rendered alert.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier sends one alert each time the risk level rises to high. It stays
// quiet while the level remains high and re-arms once it drops. A failed send
// leaves it armed so the next high result tries again. It implements
// pipeline.Sink.
type Notifier struct {
	mailer   Mailer
	location string
	loc      *time.Location
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu      sync.Mutex
	alerted bool
}

func NewNotifier(mailer Mailer, location string, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Notifier {
	return &Notifier{
		mailer:   mailer,
		location: location,
		loc:      loc,
		logger:   logger,
		metrics:  metrics,
	}
}

func (n *Notifier) Name() string { return "alert" }

// Deliver sends an alert on a transition into high risk.
func (n *Notifier) Deliver(ctx context.Context, inv domain.Invocation, result domain.UpdateResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if result.Risk.Level != domain.RiskHigh {
		if n.alerted {
			n.logger.Info("risk below high, alert re-armed", "risk_level", result.Risk.Level, "sequence", inv.Sequence)
		}
		n.alerted = false
		return nil
	}
	if n.alerted {
		return nil
	}

	msg, err := Compose(n.location, n.loc, result)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.metrics.Alerts.WithLabelValues("failed").Inc()
		return fmt.Errorf("send alert for update %d: %w", inv.Sequence, err)
	}

	n.alerted = true
	n.metrics.Alerts.WithLabelValues("sent").Inc()
	n.logger.Warn("high flood risk alert sent",
		"sequence", inv.Sequence,
		"run_id", inv.RunID,
		"points", result.Risk.Points,
		"reasons", result.Risk.Reasons,
	)
	return nil
}

// ReportFailure keeps the current alert state; a failed run says nothing
// about the risk level.
func (n *Notifier) ReportFailure(_ context.Context, inv domain.Invocation, err error) {
	n.logger.Debug("alert state unchanged after failed update", "sequence", inv.Sequence, "error", err)
}
