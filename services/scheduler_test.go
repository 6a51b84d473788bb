package services

import (
	"testing"
	"time"

	"support-exchange-system/models"

	"github.com/stretchr/testify/require"
)

func TestSweepAutoAcceptsExpiredInteractions(t *testing.T) {
	env := setupTestEnv(t)
	owner := mustAccount(t, env, "owner", "")
	actor := mustAccount(t, env, "actor", "")
	item := publishItem(t, env, owner.ID, models.SupportKindFollow)

	inter, err := env.Interactions.Claim(actor.ID, item.ID)
	require.NoError(t, err)

	// Before the deadline nothing happens.
	env.Sweeper.SweepOnce(time.Now())
	var fresh models.Interaction
	require.NoError(t, env.DB.First(&fresh, "id = ?", inter.ID).Error)
	require.Equal(t, models.StatusPending, fresh.Status)

	// Past the deadline the claim resolves as auto_accepted and credits land.
	env.Sweeper.SweepOnce(time.Now().Add(env.Cfg.ApprovalWindow + time.Hour))
	require.NoError(t, env.DB.First(&fresh, "id = ?", inter.ID).Error)
	require.Equal(t, models.StatusAutoAccepted, fresh.Status)
	require.NotNil(t, fresh.ResolvedAt)

	balance, err := env.Ledger.BalanceOf(actor.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec("12")))
	requireLedgerMatchesBalance(t, env, actor.ID)
}

func TestSweepSkipsResolvedInteractions(t *testing.T) {
	env := setupTestEnv(t)
	owner := mustAccount(t, env, "owner", "")
	actor := mustAccount(t, env, "actor", "")
	item := publishItem(t, env, owner.ID, models.SupportKindFollow)

	inter, err := env.Interactions.Claim(actor.ID, item.ID)
	require.NoError(t, err)
	_, err = env.Interactions.Resolve(inter.ID, models.StatusRejected, owner.ID)
	require.NoError(t, err)

	env.Sweeper.SweepOnce(time.Now().Add(env.Cfg.ApprovalWindow + time.Hour))

	var fresh models.Interaction
	require.NoError(t, env.DB.First(&fresh, "id = ?", inter.ID).Error)
	require.Equal(t, models.StatusRejected, fresh.Status, "a rejection must survive the sweep")

	balance, err := env.Ledger.BalanceOf(actor.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec("10")))
}

func TestSweepAutoAcceptsExpiredAdminActions(t *testing.T) {
	env := setupTestEnv(t)
	mustAccount(t, env, "admin-1", "")
	mod := mustAccount(t, env, "mod", "")
	target := mustAccount(t, env, "target", "")

	action, err := env.Admin.Propose(mod.ID, ProposalInput{
		Kind:     models.AdminGrantPoints,
		TargetID: target.ID,
		Amount:   dec("5"),
	})
	require.NoError(t, err)

	env.Sweeper.SweepOnce(time.Now().Add(env.Cfg.ApprovalWindow + time.Hour))

	var fresh models.AdminAction
	require.NoError(t, env.DB.First(&fresh, "id = ?", action.ID).Error)
	require.Equal(t, models.StatusAutoAccepted, fresh.Status)

	balance, err := env.Ledger.BalanceOf(target.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec("15")), "expired grant applies on auto-accept")
	requireLedgerMatchesBalance(t, env, target.ID)
}

func TestSweepIsIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	owner := mustAccount(t, env, "owner", "")
	actor := mustAccount(t, env, "actor", "")
	item := publishItem(t, env, owner.ID, models.SupportKindFollow)

	_, err := env.Interactions.Claim(actor.ID, item.ID)
	require.NoError(t, err)

	late := time.Now().Add(env.Cfg.ApprovalWindow + time.Hour)
	env.Sweeper.SweepOnce(late)
	env.Sweeper.SweepOnce(late)

	balance, err := env.Ledger.BalanceOf(actor.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec("12")), "a second sweep must not credit again")
}
