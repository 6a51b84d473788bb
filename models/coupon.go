package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is the bookkeeping row produced by an accepted create_coupon admin
// action. Redemption lives outside this service.
type Coupon struct {
	ID        string          `gorm:"primaryKey;type:uuid" json:"id"`
	Code      string          `gorm:"uniqueIndex;not null" json:"code"`
	Value     decimal.Decimal `gorm:"type:numeric;not null" json:"value"`
	CreatedBy string          `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
}
