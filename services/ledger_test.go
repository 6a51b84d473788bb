package services

import (
	"errors"
	"testing"

	"support-exchange-system/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreditAndDebitRecordEntries(t *testing.T) {
	env := setupTestEnv(t)
	acct := mustAccount(t, env, "user-1", "")

	require.NoError(t, env.Ledger.Credit(env.DB, acct.ID, dec("5"), "bonus"))
	require.NoError(t, env.Ledger.Debit(env.DB, acct.ID, dec("3"), "spend"))

	balance, err := env.Ledger.BalanceOf(acct.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec("12")), "10 signup + 5 - 3, got %s", balance)

	requireLedgerMatchesBalance(t, env, acct.ID)
}

func TestDebitInsufficientFunds(t *testing.T) {
	env := setupTestEnv(t)
	acct := mustAccount(t, env, "user-1", "")

	err := env.Ledger.Debit(env.DB, acct.ID, dec("11"), "too much")
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	// Nothing moved, nothing was written.
	balance, err := env.Ledger.BalanceOf(acct.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec("10")))
	requireLedgerMatchesBalance(t, env, acct.ID)
}

func TestDebitToExactlyZero(t *testing.T) {
	env := setupTestEnv(t)
	acct := mustAccount(t, env, "user-1", "")

	require.NoError(t, env.Ledger.Debit(env.DB, acct.ID, dec("10"), "all in"))

	balance, err := env.Ledger.BalanceOf(acct.ID)
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestCreditUnknownAccount(t *testing.T) {
	env := setupTestEnv(t)

	err := env.Ledger.Credit(env.DB, "missing-id", dec("1"), "ghost")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNegativeAmountsRejected(t *testing.T) {
	env := setupTestEnv(t)
	acct := mustAccount(t, env, "user-1", "")

	require.Error(t, env.Ledger.Credit(env.DB, acct.ID, dec("-1"), "nope"))
	require.Error(t, env.Ledger.Debit(env.DB, acct.ID, dec("-1"), "nope"))
	requireLedgerMatchesBalance(t, env, acct.ID)
}

func TestHistoryNewestFirst(t *testing.T) {
	env := setupTestEnv(t)
	acct := mustAccount(t, env, "user-1", "")

	require.NoError(t, env.Ledger.Credit(env.DB, acct.ID, dec("1"), "first"))
	require.NoError(t, env.Ledger.Credit(env.DB, acct.ID, dec("2"), "second"))

	entries, err := env.Ledger.History(acct.ID, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.False(t, entries[0].CreatedAt.Before(entries[1].CreatedAt))
}

func TestFailedTransactionLeavesNoTrace(t *testing.T) {
	env := setupTestEnv(t)
	acct := mustAccount(t, env, "user-1", "")

	boom := errors.New("boom")
	err := env.DB.Transaction(func(tx *gorm.DB) error {
		if err := env.Ledger.Credit(tx, acct.ID, dec("100"), "doomed"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	balance, err := env.Ledger.BalanceOf(acct.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec("10")), "rollback must undo the credit, got %s", balance)

	var count int64
	require.NoError(t, env.DB.Model(&models.LedgerEntry{}).
		Where("account_id = ? AND reason = ?", acct.ID, "doomed").Count(&count).Error)
	require.Zero(t, count)
}
