package services

import (
	"errors"
	"fmt"
	"time"

	"support-exchange-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemResolver is the acting party the expiry sweep resolves with. It
// bypasses the owner check but may only auto-accept.
const SystemResolver = "system"

type InteractionService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Cfg      *Config
	Notifier Notifier
}

func NewInteractionService(db *gorm.DB, ledger *LedgerService, cfg *Config, notifier Notifier) *InteractionService {
	return &InteractionService{DB: db, Ledger: ledger, Cfg: cfg, Notifier: notifier}
}

// Claim records that actor says they fulfilled the item. The point value and
// the owner are frozen on the row at creation. Duplicate claims are stopped
// by the (kind, item, actor) unique index — under two concurrent claims
// exactly one insert lands and the other surfaces ErrDuplicateClaim.
func (s *InteractionService) Claim(actorID, itemID string) (*models.Interaction, error) {
	var item models.SupportItem
	if err := s.DB.First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	if item.OwnerID == actorID {
		return nil, models.ErrSelfSupportNotAllowed
	}

	inter := &models.Interaction{
		ID:        uuid.NewString(),
		Kind:      item.Kind,
		ItemID:    item.ID,
		ActorID:   actorID,
		OwnerID:   item.OwnerID,
		Status:    models.StatusPending,
		Points:    s.Cfg.SupportPoints(item.Kind),
		ExpiresAt: time.Now().Add(s.Cfg.ApprovalWindow),
	}
	if err := s.DB.Create(inter).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateClaim
		}
		return nil, err
	}

	s.notifyOwnerOfClaim(inter)
	return inter, nil
}

// Resolve is the single authoritative transition for both the manual path
// and the expiry sweep. The transition itself is one conditional UPDATE
// (status must still be pending), so a manual accept racing the sweep's
// auto-accept succeeds exactly once; the loser gets AlreadyResolvedError
// with the terminal state that won.
func (s *InteractionService) Resolve(interactionID string, outcome models.ApprovalStatus, actingPartyID string) (*models.Interaction, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("invalid resolution outcome %q", outcome)
	}
	if actingPartyID == SystemResolver && outcome != models.StatusAutoAccepted {
		return nil, fmt.Errorf("system resolution must be auto_accepted, got %q", outcome)
	}
	if actingPartyID != SystemResolver && outcome == models.StatusAutoAccepted {
		return nil, fmt.Errorf("only the system resolver may auto-accept")
	}

	var inter models.Interaction
	if err := s.DB.First(&inter, "id = ?", interactionID).Error; err != nil {
		return nil, err
	}

	if actingPartyID != SystemResolver && actingPartyID != inter.OwnerID {
		return nil, models.ErrNotAuthorized
	}
	if inter.Status.Terminal() {
		return &inter, &models.AlreadyResolvedError{Status: inter.Status}
	}

	var referrer *models.Account
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Interaction{}).
			Where("id = ? AND status = ?", inter.ID, models.StatusPending).
			Updates(map[string]interface{}{"status": outcome, "resolved_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Another resolver landed first; report what it decided.
			var current models.Interaction
			if err := tx.First(&current, "id = ?", inter.ID).Error; err != nil {
				return err
			}
			return &models.AlreadyResolvedError{Status: current.Status}
		}
		inter.Status = outcome
		inter.ResolvedAt = &now

		if outcome.Credits() {
			if err := s.Ledger.Credit(tx, inter.ActorID, inter.Points, "support accepted"); err != nil {
				return err
			}
			ref, err := applyReferralBonus(tx, s.Ledger, s.Cfg, inter.ActorID)
			if err != nil {
				return err
			}
			referrer = ref
		}
		return nil
	})
	if err != nil {
		var already *models.AlreadyResolvedError
		if errors.As(err, &already) {
			inter.Status = already.Status
			return &inter, already
		}
		return nil, err
	}

	s.notifyActorOfOutcome(&inter)
	if referrer != nil {
		notifyQuietly(s.Notifier, referrer.ExternalID,
			fmt.Sprintf("🎁 You earned a %s point referral bonus.", s.Cfg.ReferralBonus), nil)
	}
	return &inter, nil
}

func (s *InteractionService) notifyOwnerOfClaim(inter *models.Interaction) {
	var owner, actor models.Account
	if err := s.DB.First(&owner, "id = ?", inter.OwnerID).Error; err != nil {
		return
	}
	if err := s.DB.First(&actor, "id = ?", inter.ActorID).Error; err != nil {
		return
	}

	text := fmt.Sprintf("📈 @%s says they supported your %s.\nApprove granting %s points?",
		DisplayName(&actor), inter.Kind, inter.Points)
	notifyQuietly(s.Notifier, owner.ExternalID, text, []NotifyAction{
		{Label: "✅ Accept", Verb: "approve_interaction", EntityID: inter.ID},
		{Label: "❌ Reject", Verb: "reject_interaction", EntityID: inter.ID},
	})
}

func (s *InteractionService) notifyActorOfOutcome(inter *models.Interaction) {
	var actor models.Account
	if err := s.DB.First(&actor, "id = ?", inter.ActorID).Error; err != nil {
		return
	}

	var text string
	switch inter.Status {
	case models.StatusAccepted:
		text = fmt.Sprintf("✅ Your %s support was approved. You earned %s points.", inter.Kind, inter.Points)
	case models.StatusAutoAccepted:
		text = fmt.Sprintf("✅ Your %s support was auto-approved. You earned %s points.", inter.Kind, inter.Points)
	case models.StatusRejected:
		text = fmt.Sprintf("❌ Your %s support was rejected.", inter.Kind)
	default:
		return
	}
	notifyQuietly(s.Notifier, actor.ExternalID, text, nil)
}
