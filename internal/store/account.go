package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
)

// AccountStore defines the interface for provider account persistence.
type AccountStore interface {
	// Create saves a new provisioned account to the store.
	// Returns validation errors from the domain Account if data is invalid.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique ID.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)

	// ListByOwner retrieves all accounts belonging to the given owner,
	// newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)

	// IncrementUse atomically increments the account's use count by one.
	// It must be a single-row read-modify-write at the database so that
	// concurrent saves cannot lose updates.
	// Returns ErrAccountNotFound if the account does not exist.
	IncrementUse(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new AccountStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) AccountStore
}
