package services

import (
	"testing"

	"support-exchange-system/models"

	"github.com/stretchr/testify/require"
)

func TestEnsureAccountGrantsSignupOnce(t *testing.T) {
	env := setupTestEnv(t)

	acct, created, err := env.Accounts.EnsureAccount("user-1", "")
	require.NoError(t, err)
	require.True(t, created)
	require.True(t, acct.Balance.Equal(env.Cfg.SignupGrant))
	require.NotEmpty(t, acct.ReferralToken)

	// Second contact is a no-op: same account, no extra grant.
	again, created, err := env.Accounts.EnsureAccount("user-1", "")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, acct.ID, again.ID)

	entries, err := env.Ledger.History(acct.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "signup grant", entries[0].Reason)
	requireLedgerMatchesBalance(t, env, acct.ID)
}

func TestEnsureAccountBindsReferrer(t *testing.T) {
	env := setupTestEnv(t)
	inviter := mustAccount(t, env, "inviter", "")

	invited, created, err := env.Accounts.EnsureAccount("invited", inviter.ReferralToken)
	require.NoError(t, err)
	require.True(t, created)
	require.NotNil(t, invited.ReferrerID)
	require.Equal(t, inviter.ID, *invited.ReferrerID)

	// The edge is fixed at creation: a later token changes nothing.
	other := mustAccount(t, env, "other", "")
	again, _, err := env.Accounts.EnsureAccount("invited", other.ReferralToken)
	require.NoError(t, err)
	require.Equal(t, inviter.ID, *again.ReferrerID)
}

func TestEnsureAccountIgnoresBadTokens(t *testing.T) {
	env := setupTestEnv(t)

	acct, _, err := env.Accounts.EnsureAccount("user-1", "no-such-token")
	require.NoError(t, err)
	require.Nil(t, acct.ReferrerID)
	require.True(t, acct.Balance.Equal(env.Cfg.SignupGrant), "bad token must not block signup")
}

func TestEnsureAccountIgnoresSelfReferral(t *testing.T) {
	env := setupTestEnv(t)
	acct := mustAccount(t, env, "user-1", "")

	// Tokens resolve at creation time, so a self-token can only arrive on the
	// idempotent path — the referrer edge must stay empty.
	again, _, err := env.Accounts.EnsureAccount("user-1", acct.ReferralToken)
	require.NoError(t, err)
	require.Nil(t, again.ReferrerID)
}

func TestSetHandle(t *testing.T) {
	env := setupTestEnv(t)
	mustAccount(t, env, "user-1", "")
	mustAccount(t, env, "user-2", "")

	acct, err := env.Accounts.SetHandle("user-1", "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", *acct.Handle)
	require.Equal(t, "alice", DisplayName(acct))

	_, err = env.Accounts.SetHandle("user-2", "alice")
	require.ErrorIs(t, err, models.ErrHandleTaken)

	_, err = env.Accounts.SetHandle("user-2", "  ")
	require.Error(t, err)
}

func TestDisplayNameFallsBackToExternalID(t *testing.T) {
	env := setupTestEnv(t)
	acct := mustAccount(t, env, "user-1", "")
	require.Equal(t, "user-1", DisplayName(acct))
}
