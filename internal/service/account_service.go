package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/provision"
	"github.com/mgnegypt/nano-image/internal/store"
)

// CredentialProvisioner runs the external provisioning flow and returns the
// credentials of a freshly verified provider account.
type CredentialProvisioner interface {
	Provision(ctx context.Context) (*provision.Credentials, error)
}

// AccountService provides provider-account operations: provisioning new
// disposable accounts and retrieving existing ones with ownership checks.
type AccountService interface {
	// CreateAccount provisions a fresh provider account for the owner and
	// persists it. This is a slow call: it drives mailbox creation,
	// registration and verification-code interception end to end.
	CreateAccount(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error)

	// GetAccount retrieves an account by ID, verifying ownership.
	// Returns ErrNotOwned if the account belongs to another user.
	GetAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error)

	// ListAccounts retrieves all accounts belonging to the owner, newest
	// first.
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error)
}

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accounts    store.AccountStore
	provisioner CredentialProvisioner
	runTx       TxRunner
	maxUses     int
	logger      *slog.Logger
}

// NewAccountService creates a new AccountService. maxUses is the quota
// assigned to each freshly provisioned account; non-positive values apply
// domain.DefaultMaxUses.
func NewAccountService(
	accounts store.AccountStore,
	provisioner CredentialProvisioner,
	runTx TxRunner,
	maxUses int,
	logger *slog.Logger,
) AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountServiceImpl{
		accounts:    accounts,
		provisioner: provisioner,
		runTx:       runTx,
		maxUses:     maxUses,
		logger:      logger.With(slog.String("component", "account_service")),
	}
}

// CreateAccount provisions a fresh provider account and persists it.
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, ownerID uuid.UUID) (*domain.Account, error) {
	creds, err := s.provisioner.Provision(ctx)
	if err != nil {
		s.logger.Error("provisioning flow failed",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	account, err := domain.NewAccount(ownerID, creds.Email, creds.Password, creds.SessionToken, s.maxUses)
	if err != nil {
		s.logger.Error("provisioned credentials failed validation",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.accounts.WithTx(tx).Create(ctx, account)
	})
	if err != nil {
		s.logger.Error("failed to save provisioned account",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info("provisioned account",
		"account_id", account.ID,
		"owner_id", ownerID,
		"email", account.Email,
		"max_uses", account.MaxUses)

	return account, nil
}

// GetAccount retrieves an account by ID, verifying ownership.
func (s *AccountServiceImpl) GetAccount(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to retrieve account",
				"error", err,
				"account_id", accountID)
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}

	if account.OwnerID != ownerID {
		s.logger.Warn("account access denied",
			"account_id", accountID,
			"owner_id", ownerID)
		return nil, ErrNotOwned
	}

	return account, nil
}

// ListAccounts retrieves all accounts belonging to the owner.
func (s *AccountServiceImpl) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*domain.Account, error) {
	accounts, err := s.accounts.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list accounts",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, nil
}
