package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalStatus is the lifecycle of anything that waits for a sign-off:
// pending → accepted | rejected | auto_accepted. Terminal states never
// transition again.
type ApprovalStatus string

const (
	StatusPending      ApprovalStatus = "pending"
	StatusAccepted     ApprovalStatus = "accepted"
	StatusRejected     ApprovalStatus = "rejected"
	StatusAutoAccepted ApprovalStatus = "auto_accepted"
)

// Terminal reports whether s is an end state.
func (s ApprovalStatus) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusAutoAccepted:
		return true
	case StatusPending:
		return false
	}
	return false
}

// Credits reports whether resolving into s pays out points.
func (s ApprovalStatus) Credits() bool {
	return s == StatusAccepted || s == StatusAutoAccepted
}

// Interaction is one actor's claim that they fulfilled another account's
// support item. The owner snapshot and the point value are frozen at creation
// so later config or item changes cannot alter an open claim.
//
// At most one interaction may exist per (kind, item, actor) — enforced by the
// composite unique index, not just an application check, so two concurrent
// claims on the same item cannot both land.
type Interaction struct {
	ID      string          `gorm:"primaryKey;type:uuid" json:"id"`
	Kind    SupportKind     `gorm:"type:varchar(16);not null;uniqueIndex:uniq_kind_item_actor" json:"kind"`
	ItemID  string          `gorm:"type:uuid;not null;uniqueIndex:uniq_kind_item_actor" json:"item_id"`
	ActorID string          `gorm:"type:uuid;not null;index;uniqueIndex:uniq_kind_item_actor" json:"actor_id"`
	OwnerID string          `gorm:"type:uuid;not null;index" json:"owner_id"`
	Status  ApprovalStatus  `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Points  decimal.Decimal `gorm:"type:numeric;not null" json:"points"`

	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
