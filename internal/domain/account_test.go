package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnegypt/nano-image/internal/domain"
)

func TestNewAccount(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("valid account", func(t *testing.T) {
		t.Parallel()

		account, err := domain.NewAccount(ownerID, "xk2j9q@mail.example", "Pass1234!", "session-token", 5)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, account.ID)
		assert.Equal(t, ownerID, account.OwnerID)
		assert.Equal(t, 0, account.UseCount)
		assert.Equal(t, 5, account.MaxUses)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("zero max uses falls back to default", func(t *testing.T) {
		t.Parallel()

		account, err := domain.NewAccount(ownerID, "xk2j9q@mail.example", "Pass1234!", "session-token", 0)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultMaxUses, account.MaxUses)
	})

	t.Run("missing owner", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewAccount(uuid.Nil, "xk2j9q@mail.example", "Pass1234!", "session-token", 5)
		assert.ErrorIs(t, err, domain.ErrEmptyOwnerID)
	})

	t.Run("malformed email", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewAccount(ownerID, "not-an-email", "Pass1234!", "session-token", 5)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})

	t.Run("missing session token", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewAccount(ownerID, "xk2j9q@mail.example", "Pass1234!", "", 5)
		assert.ErrorIs(t, err, domain.ErrEmptySessionToken)
	})
}

func TestAccountRemainingUses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		useCount     int
		maxUses      int
		hasRemaining bool
		remaining    int
	}{
		{name: "fresh account", useCount: 0, maxUses: 5, hasRemaining: true, remaining: 5},
		{name: "one use left", useCount: 4, maxUses: 5, hasRemaining: true, remaining: 1},
		{name: "exhausted", useCount: 5, maxUses: 5, hasRemaining: false, remaining: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			account := &domain.Account{UseCount: tt.useCount, MaxUses: tt.maxUses}
			assert.Equal(t, tt.hasRemaining, account.HasRemainingUses())
			assert.Equal(t, tt.remaining, account.RemainingUses())
		})
	}
}
