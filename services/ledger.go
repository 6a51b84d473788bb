package services

import (
	"fmt"

	"support-exchange-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService is the only component allowed to touch accounts.balance.
// Every movement writes a LedgerEntry in the same transaction as the balance
// delta, which keeps the balance-equals-sum-of-entries invariant enforceable
// in one place.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// Credit adds amount to the account balance and records the entry. Runs on
// the caller's transaction handle so workflows can compose it with their own
// writes atomically.
func (s *LedgerService) Credit(tx *gorm.DB, accountID string, amount decimal.Decimal, reason string) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit amount must not be negative, got %s", amount)
	}

	res := tx.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	entry := &models.LedgerEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    amount,
		Reason:    reason,
	}
	return tx.Create(entry).Error
}

// Debit subtracts amount, failing with ErrInsufficientFunds when the balance
// does not cover it. The balance check and the update are one conditional
// UPDATE, so concurrent debits cannot overdraw the account.
func (s *LedgerService) Debit(tx *gorm.DB, accountID string, amount decimal.Decimal, reason string) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit amount must not be negative, got %s", amount)
	}

	res := tx.Model(&models.Account{}).
		Where("id = ? AND balance >= ?", accountID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Zero rows means either a missing account or not enough points.
		var exists int64
		if err := tx.Model(&models.Account{}).Where("id = ?", accountID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}
		return models.ErrInsufficientFunds
	}

	entry := &models.LedgerEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    amount.Neg(),
		Reason:    reason,
	}
	return tx.Create(entry).Error
}

// BalanceOf returns the stored balance.
func (s *LedgerService) BalanceOf(accountID string) (decimal.Decimal, error) {
	var acct models.Account
	if err := s.DB.Select("balance").First(&acct, "id = ?", accountID).Error; err != nil {
		return decimal.Zero, err
	}
	return acct.Balance, nil
}

// History returns the account's movements, most recent first.
func (s *LedgerService) History(accountID string, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []models.LedgerEntry
	err := s.DB.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
