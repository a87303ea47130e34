package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxUses is the number of generation jobs a freshly provisioned
// provider account may run before it is exhausted.
const DefaultMaxUses = 5

// Account represents a disposable provider account provisioned for a user.
// The email, password and session token are the credentials handed back by
// the provisioning flow; they are replayed verbatim against the external
// provider and are therefore stored as-is.
type Account struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Email        string    `json:"email"`
	Password     string    `json:"-"` // Never expose provider credentials in JSON
	SessionToken string    `json:"-"`
	UseCount     int       `json:"use_count"`
	MaxUses      int       `json:"max_uses"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAccount creates a new Account owned by ownerID from freshly provisioned
// credentials. It generates a new UUID and sets the creation timestamps.
// Returns an error if validation fails.
func NewAccount(ownerID uuid.UUID, email, password, sessionToken string, maxUses int) (*Account, error) {
	if maxUses <= 0 {
		maxUses = DefaultMaxUses
	}

	account := &Account{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Email:        email,
		Password:     password,
		SessionToken: sessionToken,
		UseCount:     0,
		MaxUses:      maxUses,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the Account has valid data.
// Returns an error if any field fails validation.
func (a *Account) Validate() error {
	if a.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}

	if !strings.Contains(a.Email, "@") || strings.HasPrefix(a.Email, "@") ||
		strings.HasSuffix(a.Email, "@") {
		return ErrInvalidEmail
	}

	if a.SessionToken == "" {
		return ErrEmptySessionToken
	}

	if a.UseCount < 0 || a.MaxUses <= 0 || a.UseCount > a.MaxUses {
		return ErrInvalidUseCount
	}

	return nil
}

// HasRemainingUses reports whether the account may still submit jobs.
// This is a point-in-time check: the use count is only confirmed after an
// artifact is durably saved, so two near-limit submissions can both pass
// before either save lands.
func (a *Account) HasRemainingUses() bool {
	return a.UseCount < a.MaxUses
}

// RemainingUses returns how many jobs the account may still run.
func (a *Account) RemainingUses() int {
	if remaining := a.MaxUses - a.UseCount; remaining > 0 {
		return remaining
	}
	return 0
}
