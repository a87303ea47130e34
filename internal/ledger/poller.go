package ledger

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is the delay between reconciliation rounds.
const DefaultPollInterval = 3 * time.Second

// Reconciler fetches the current state of a task by its remote ID.
type Reconciler interface {
	Reconcile(ctx context.Context, remoteID string) (State, error)
}

// Notifier is told about records that just reached a terminal state.
type Notifier interface {
	TaskFinished(rec Record)
}

// Poller drives the ledger's reconciliation loop: a fixed-interval ticker
// that checks one record per round, oldest active first. Polling one record
// at a time keeps load on the server flat no matter how many tasks are
// tracked; the others catch up on later rounds.
type Poller struct {
	ledger     *Ledger
	reconciler Reconciler
	notifier   Notifier
	interval   time.Duration
	logger     *slog.Logger
}

// NewPoller creates a Poller. A nil notifier disables notifications and a
// non-positive interval applies DefaultPollInterval.
func NewPoller(ledger *Ledger, reconciler Reconciler, notifier Notifier, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		ledger:     ledger,
		reconciler: reconciler,
		notifier:   notifier,
		interval:   interval,
		logger:     logger.With(slog.String("component", "ledger_poller")),
	}
}

// Run polls until ctx is canceled and returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce reconciles the oldest active record, if any. Transient
// reconciliation failures are logged and retried on the next round.
func (p *Poller) pollOnce(ctx context.Context) {
	rec, ok := p.ledger.EarliestActive()
	if !ok {
		return
	}

	state, err := p.reconciler.Reconcile(ctx, rec.RemoteID)
	if err != nil {
		p.logger.Warn("reconciliation failed, will retry",
			"remote_id", rec.RemoteID,
			"error", err)
		return
	}

	updated, err := p.ledger.ApplyState(rec.LocalID, state)
	if err != nil {
		p.logger.Error("failed to apply reconciled state",
			"local_id", rec.LocalID,
			"error", err)
		return
	}

	if updated.Status.IsTerminal() {
		p.logger.Info("task finished",
			"local_id", updated.LocalID,
			"remote_id", updated.RemoteID,
			"status", updated.Status)
		if p.notifier != nil {
			p.notifier.TaskFinished(updated)
		}
	}
}
