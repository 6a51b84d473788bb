package models

// SupportKind tags what sort of reciprocal support an item asks for.
type SupportKind string

const (
	SupportKindFollow SupportKind = "follow"
	SupportKindVideo  SupportKind = "video"
	SupportKindLive   SupportKind = "live"
)

// Valid reports whether k is a known support kind.
func (k SupportKind) Valid() bool {
	switch k {
	case SupportKindFollow, SupportKindVideo, SupportKindLive:
		return true
	}
	return false
}

// SupportItem is a published request for support (follow profile / boost
// video / watch live). Publishing costs points; the row is read-only after
// creation and ownership never changes.
type SupportItem struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID     string      `gorm:"type:uuid;index;not null" json:"owner_id"`
	Kind        SupportKind `gorm:"type:varchar(16);index;not null" json:"kind"`
	Link        string      `gorm:"not null" json:"link"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Variant     string      `gorm:"type:varchar(32)" json:"variant,omitempty"` // e.g. "normal", "live-incentive", "event", "shop", "collab"

	Timestamps
}
