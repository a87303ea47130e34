package service_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/provision"
	"github.com/mgnegypt/nano-image/internal/service"
	"github.com/mgnegypt/nano-image/internal/store"
)

func TestCreateAccount(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	accounts := newFakeAccountStore()
	provisioner := &fakeProvisioner{
		creds: &provision.Credentials{
			Email:        "xk20dmq91z4a@indigobook.com",
			Password:     "Pass4821!",
			SessionToken: "sess-token",
		},
	}

	svc := service.NewAccountService(accounts, provisioner, passTx, 5, slog.Default())

	account, err := svc.CreateAccount(context.Background(), ownerID)
	require.NoError(t, err)

	assert.Equal(t, ownerID, account.OwnerID)
	assert.Equal(t, "xk20dmq91z4a@indigobook.com", account.Email)
	assert.Equal(t, "sess-token", account.SessionToken)
	assert.Equal(t, 0, account.UseCount)
	assert.Equal(t, 5, account.MaxUses)
	assert.Equal(t, 1, provisioner.calls)

	stored, err := accounts.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, stored.Email)
}

func TestCreateAccountDefaultsMaxUses(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{
		creds: &provision.Credentials{
			Email:        "a@b.test",
			Password:     "Pass1000!",
			SessionToken: "tok",
		},
	}
	svc := service.NewAccountService(newFakeAccountStore(), provisioner, passTx, 0, slog.Default())

	account, err := svc.CreateAccount(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxUses, account.MaxUses)
}

func TestCreateAccountProvisionFailure(t *testing.T) {
	t.Parallel()

	provisioner := &fakeProvisioner{err: provision.ErrVerificationTimeout}
	accounts := newFakeAccountStore()
	svc := service.NewAccountService(accounts, provisioner, passTx, 5, slog.Default())

	_, err := svc.CreateAccount(context.Background(), uuid.New())
	assert.ErrorIs(t, err, provision.ErrVerificationTimeout)
	assert.Empty(t, accounts.accounts)
}

func TestCreateAccountSaveFailure(t *testing.T) {
	t.Parallel()

	accounts := newFakeAccountStore()
	accounts.createErr = errors.New("insert failed")
	provisioner := &fakeProvisioner{
		creds: &provision.Credentials{Email: "a@b.test", Password: "p", SessionToken: "tok"},
	}
	svc := service.NewAccountService(accounts, provisioner, passTx, 5, slog.Default())

	_, err := svc.CreateAccount(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestGetAccount(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	accounts := newFakeAccountStore()
	account, err := domain.NewAccount(ownerID, "a@b.test", "p", "tok", 5)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(context.Background(), account))

	svc := service.NewAccountService(accounts, &fakeProvisioner{}, passTx, 5, slog.Default())

	t.Run("owner can read", func(t *testing.T) {
		got, err := svc.GetAccount(context.Background(), ownerID, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("other owner denied", func(t *testing.T) {
		_, err := svc.GetAccount(context.Background(), uuid.New(), account.ID)
		assert.ErrorIs(t, err, service.ErrNotOwned)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := svc.GetAccount(context.Background(), ownerID, uuid.New())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestListAccounts(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	accounts := newFakeAccountStore()
	for i := 0; i < 2; i++ {
		account, err := domain.NewAccount(ownerID, "a@b.test", "p", "tok", 5)
		require.NoError(t, err)
		require.NoError(t, accounts.Create(context.Background(), account))
	}
	other, err := domain.NewAccount(uuid.New(), "c@d.test", "p", "tok", 5)
	require.NoError(t, err)
	require.NoError(t, accounts.Create(context.Background(), other))

	svc := service.NewAccountService(accounts, &fakeProvisioner{}, passTx, 5, slog.Default())

	got, err := svc.ListAccounts(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
