package services

import (
	"sync"
	"testing"
	"time"

	"support-exchange-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingNotifier captures outbound notifications for assertions.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	ExternalID string
	Text       string
	Actions    []NotifyAction
}

func (r *recordingNotifier) Notify(externalID, text string, actions []NotifyAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{ExternalID: externalID, Text: text, Actions: actions})
	return nil
}

func (r *recordingNotifier) sentTo(externalID string) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, n := range r.sent {
		if n.ExternalID == externalID {
			out = append(out, n)
		}
	}
	return out
}

type testEnv struct {
	DB           *gorm.DB
	Cfg          *Config
	Notifier     *recordingNotifier
	Ledger       *LedgerService
	Accounts     *AccountService
	Catalog      *CatalogService
	Interactions *InteractionService
	Admin        *AdminService
	Sweeper      *ExpirySweeper
}

// setupTestEnv wires the full service graph over an in-memory sqlite DB.
// Max one open connection: the shared in-memory handle must be serialized,
// which also keeps concurrent-transaction tests deterministic.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.LedgerEntry{},
		&models.SupportItem{},
		&models.Interaction{},
		&models.AdminAction{},
		&models.Coupon{},
	))

	cfg := &Config{
		SignupGrant:         dec("10"),
		FollowPublishCost:   dec("3"),
		VideoPublishCost:    dec("5"),
		LivePublishCost:     dec("5"),
		FollowSupportPoints: dec("2"),
		VideoSupportPoints:  dec("3"),
		LiveSupportPoints:   dec("3"),
		ReferralBonus:       dec("1"),
		ApprovalWindow:      48 * time.Hour,
		SweepInterval:       time.Minute,
		AdminExternalID:     "admin-1",
	}
	notifier := &recordingNotifier{}

	ledger := NewLedgerService(db)
	accounts := NewAccountService(db, ledger, cfg, notifier)
	catalog := NewCatalogService(db, ledger, cfg, notifier)
	interactions := NewInteractionService(db, ledger, cfg, notifier)
	admin := NewAdminService(db, ledger, cfg, notifier)
	sweeper := NewExpirySweeper(db, interactions, admin, cfg)

	return &testEnv{
		DB:           db,
		Cfg:          cfg,
		Notifier:     notifier,
		Ledger:       ledger,
		Accounts:     accounts,
		Catalog:      catalog,
		Interactions: interactions,
		Admin:        admin,
		Sweeper:      sweeper,
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustAccount(t *testing.T, env *testEnv, externalID, inviterToken string) *models.Account {
	t.Helper()
	acct, _, err := env.Accounts.EnsureAccount(externalID, inviterToken)
	require.NoError(t, err)
	return acct
}

// requireLedgerMatchesBalance asserts the core invariant: stored balance ==
// running sum of the account's ledger entries.
func requireLedgerMatchesBalance(t *testing.T, env *testEnv, accountID string) {
	t.Helper()

	balance, err := env.Ledger.BalanceOf(accountID)
	require.NoError(t, err)

	var entries []models.LedgerEntry
	require.NoError(t, env.DB.Where("account_id = ?", accountID).Find(&entries).Error)

	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	require.True(t, balance.Equal(sum),
		"balance %s != ledger sum %s for account %s", balance, sum, accountID)
}
