package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is a registered participant, keyed by the opaque user id the
// chat-platform gateway forwards on X-User-ID. Accounts are created on first
// contact and never deleted — the ledger history must stay attributable.
type Account struct {
	ID         string          `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalID string          `gorm:"uniqueIndex;not null" json:"external_id"` // platform user id, immutable
	Handle     *string         `gorm:"uniqueIndex" json:"handle,omitempty"`     // display handle, unique when set
	Balance    decimal.Decimal `gorm:"type:numeric;not null" json:"balance"`

	// Referral edge: one hop, fixed at creation, never re-parented.
	ReferrerID    *string `gorm:"type:uuid;index" json:"referrer_id,omitempty"`
	ReferralToken string  `gorm:"uniqueIndex;not null" json:"referral_token"`

	Timestamps
}

// Timestamps is the shared audit block embedded in mutable models.
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
