package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
)

// ErrRecordNotFound indicates no record with the given local ID exists.
var ErrRecordNotFound = errors.New("ledger record not found")

// State is the reconciled status of a tracked task.
type State struct {
	Status       domain.TaskStatus
	ResultURL    string
	ErrorMessage string
}

// Ledger holds the ordered task records, newest first, and keeps them in
// sync with the injected Storage. All methods are safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	records []Record
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
}

// New hydrates a Ledger from storage. A corrupted or unreadable state is
// logged and treated as an empty ledger rather than an error; the next save
// overwrites it.
func New(storage Storage, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "ledger"))

	records, err := storage.Load()
	if err != nil {
		logger.Warn("discarding unreadable ledger state", "error", err)
		records = nil
	}

	return &Ledger{
		records: records,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Add mints a new pending record for a submitted task and prepends it.
func (l *Ledger) Add(kind Kind, remoteID, prompt string) (Record, error) {
	rec := Record{
		LocalID:   uuid.NewString(),
		RemoteID:  remoteID,
		Kind:      kind,
		Prompt:    prompt,
		Status:    domain.TaskStatusPending,
		CreatedAt: l.now().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append([]Record{rec}, l.records...)
	if err := l.persist(); err != nil {
		l.records = l.records[1:]
		return Record{}, err
	}

	l.logger.Debug("tracking task", "local_id", rec.LocalID, "remote_id", remoteID)
	return rec, nil
}

// Remove deletes the record with the given local ID.
func (l *Ledger) Remove(localID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, rec := range l.records {
		if rec.LocalID == localID {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return l.persist()
		}
	}
	return ErrRecordNotFound
}

// ClearCompleted removes every record in a terminal state, both completed
// and failed. Active records are untouched.
func (l *Ledger) ClearCompleted() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.records[:0:0]
	for _, rec := range l.records {
		if rec.Active() {
			kept = append(kept, rec)
		}
	}
	l.records = kept
	return l.persist()
}

// ApplyState merges a reconciled state into the record. The first terminal
// transition stamps CompletedAt; re-applying a terminal state leaves the
// stamp alone.
func (l *Ledger) ApplyState(localID string, state State) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.records {
		rec := &l.records[i]
		if rec.LocalID != localID {
			continue
		}

		if !rec.Status.CanTransitionTo(state.Status) {
			return Record{}, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, rec.Status, state.Status)
		}

		rec.Status = state.Status
		rec.ResultURL = state.ResultURL
		rec.ErrorMessage = state.ErrorMessage
		if state.Status.IsTerminal() && rec.CompletedAt == nil {
			at := l.now().UTC()
			rec.CompletedAt = &at
		}

		if err := l.persist(); err != nil {
			return Record{}, err
		}
		return *rec, nil
	}
	return Record{}, ErrRecordNotFound
}

// Records returns a copy of all records, newest first.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Active returns the records still awaiting a terminal state.
func (l *Ledger) Active() []Record {
	return l.filter(func(r Record) bool { return r.Active() })
}

// Completed returns the records that finished successfully.
func (l *Ledger) Completed() []Record {
	return l.filter(func(r Record) bool { return r.Status == domain.TaskStatusCompleted })
}

// Failed returns the records that finished unsuccessfully.
func (l *Ledger) Failed() []Record {
	return l.filter(func(r Record) bool { return r.Status == domain.TaskStatusFailed })
}

// EarliestActive returns the oldest record still awaiting reconciliation.
func (l *Ledger) EarliestActive() (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Records are prepended, so the oldest active record is the last one.
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].Active() {
			return l.records[i], true
		}
	}
	return Record{}, false
}

func (l *Ledger) filter(keep func(Record) bool) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Record
	for _, rec := range l.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// persist writes the current record list through storage.
// Callers hold l.mu.
func (l *Ledger) persist() error {
	if err := l.storage.Save(l.records); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}
