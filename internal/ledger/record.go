// Package ledger maintains a client-side, durable list of submitted
// generation tasks and drives their reconciliation against the server.
package ledger

import (
	"time"

	"github.com/mgnegypt/nano-image/internal/domain"
)

// Kind distinguishes plain generations from edits of an input image.
type Kind string

// Record kinds
const (
	KindGenerate Kind = "generate"
	KindEdit     Kind = "edit"
)

// Record is one tracked task in the ledger. LocalID is minted by the ledger
// and never reused; RemoteID correlates the record with the server-side
// task.
type Record struct {
	LocalID      string            `json:"local_id"`
	RemoteID     string            `json:"remote_id"`
	Kind         Kind              `json:"kind"`
	Prompt       string            `json:"prompt"`
	Status       domain.TaskStatus `json:"status"`
	ResultURL    string            `json:"result_url,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// Active reports whether the record still needs reconciliation.
func (r Record) Active() bool {
	return !r.Status.IsTerminal()
}
