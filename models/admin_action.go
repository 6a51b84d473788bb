package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminActionKind is the privileged mutation a moderator may propose.
type AdminActionKind string

const (
	AdminGrantPoints  AdminActionKind = "grant_points"
	AdminChangeHandle AdminActionKind = "change_handle"
	AdminCreateCoupon AdminActionKind = "create_coupon"
)

// Valid reports whether k is a known admin action kind.
func (k AdminActionKind) Valid() bool {
	switch k {
	case AdminGrantPoints, AdminChangeHandle, AdminCreateCoupon:
		return true
	}
	return false
}

// AdminAction is a moderator-proposed mutation waiting for the primary
// approver. Same single-transition rule as Interaction; if the proposer is
// the primary approver the row is created already accepted with the payload
// applied inline.
type AdminAction struct {
	ID         string          `gorm:"primaryKey;type:uuid" json:"id"`
	Kind       AdminActionKind `gorm:"type:varchar(24);not null" json:"kind"`
	TargetID   string          `gorm:"type:uuid;not null;index" json:"target_id"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"` // grant_points / create_coupon value
	Value      string          `json:"value,omitempty"`                     // change_handle new handle, create_coupon code
	ProposerID string          `gorm:"type:uuid;not null;index" json:"proposer_id"`
	Status     ApprovalStatus  `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
