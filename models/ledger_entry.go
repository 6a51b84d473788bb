package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one immutable signed balance movement. A row is written in
// the same transaction as the balance delta it describes; the account's
// stored balance must always equal the running sum of its entries.
type LedgerEntry struct {
	ID        string          `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID string          `gorm:"type:uuid;index;not null" json:"account_id"`
	Amount    decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Reason    string          `gorm:"not null" json:"reason"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
}
