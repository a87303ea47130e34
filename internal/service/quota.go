package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/store"
)

// QuotaLedger gates job submission on an account's remaining uses. A use is
// only confirmed after the resulting artifact is durably saved, so the check
// at submission time and the increment at save time are deliberately
// separate operations; two near-limit submissions may both pass the check
// before either save lands.
type QuotaLedger struct {
	accounts store.AccountStore
	logger   *slog.Logger
}

// NewQuotaLedger creates a QuotaLedger backed by the given account store.
// If logger is nil the default logger is used.
func NewQuotaLedger(accounts store.AccountStore, logger *slog.Logger) *QuotaLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuotaLedger{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "quota_ledger")),
	}
}

// CanSubmit checks the account has at least one remaining use at this
// moment. Returns ErrQuotaExceeded when the account is exhausted.
func (q *QuotaLedger) CanSubmit(account *domain.Account) error {
	if !account.HasRemainingUses() {
		q.logger.Debug("submission rejected, account exhausted",
			"account_id", account.ID,
			"use_count", account.UseCount,
			"max_uses", account.MaxUses)
		return ErrQuotaExceeded
	}
	return nil
}

// ConfirmUse records one consumed use against the account inside the
// caller's transaction. The increment is a single atomic row update at the
// store, so concurrent saves never lose counts.
func (q *QuotaLedger) ConfirmUse(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) error {
	if err := q.accounts.WithTx(tx).IncrementUse(ctx, accountID); err != nil {
		return fmt.Errorf("failed to confirm account use: %w", err)
	}

	q.logger.Debug("confirmed account use", "account_id", accountID)
	return nil
}
