package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"support-exchange-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdminService runs the moderator-proposal workflow: structurally the same
// state machine as interactions, but with one fixed approver instead of a
// per-item owner.
type AdminService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Cfg      *Config
	Notifier Notifier
}

func NewAdminService(db *gorm.DB, ledger *LedgerService, cfg *Config, notifier Notifier) *AdminService {
	return &AdminService{DB: db, Ledger: ledger, Cfg: cfg, Notifier: notifier}
}

// ProposalInput is a moderator's requested privileged mutation.
type ProposalInput struct {
	Kind     models.AdminActionKind `json:"kind"`
	TargetID string                 `json:"target_id"`
	Amount   decimal.Decimal        `json:"amount"`
	Value    string                 `json:"value,omitempty"`
}

// Propose records an admin action. When the proposer is the primary approver
// the action short-circuits: it is created already accepted and the payload
// applies inline, with no pending period and no approval notification.
func (s *AdminService) Propose(proposerID string, in ProposalInput) (*models.AdminAction, error) {
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("unknown admin action kind %q", in.Kind)
	}

	// Validate the payload up front. A pending row that cannot apply would
	// never reach a terminal state: the resolve transaction rolls back and
	// the expiry sweep retries it forever.
	switch in.Kind {
	case models.AdminGrantPoints, models.AdminCreateCoupon:
		if !in.Amount.IsPositive() {
			return nil, fmt.Errorf("%s requires a positive amount, got %s", in.Kind, in.Amount)
		}
	case models.AdminChangeHandle:
		if strings.TrimSpace(in.Value) == "" {
			return nil, fmt.Errorf("change_handle requires a new handle")
		}
	}

	var proposer models.Account
	if err := s.DB.First(&proposer, "id = ?", proposerID).Error; err != nil {
		return nil, err
	}
	var target models.Account
	if err := s.DB.First(&target, "id = ?", in.TargetID).Error; err != nil {
		return nil, err
	}

	action := &models.AdminAction{
		ID:         uuid.NewString(),
		Kind:       in.Kind,
		TargetID:   target.ID,
		Amount:     in.Amount,
		Value:      strings.TrimSpace(in.Value),
		ProposerID: proposer.ID,
		Status:     models.StatusPending,
		ExpiresAt:  time.Now().Add(s.Cfg.ApprovalWindow),
	}

	if s.isPrimaryApprover(&proposer) {
		now := time.Now()
		action.Status = models.StatusAccepted
		action.ResolvedAt = &now

		var referrer *models.Account
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(action).Error; err != nil {
				return err
			}
			ref, err := s.applyPayload(tx, action)
			if err != nil {
				return err
			}
			referrer = ref
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.notifyTarget(action, &target)
		if referrer != nil {
			notifyQuietly(s.Notifier, referrer.ExternalID,
				fmt.Sprintf("🎁 You earned a %s point referral bonus.", s.Cfg.ReferralBonus), nil)
		}
		return action, nil
	}

	if err := s.DB.Create(action).Error; err != nil {
		return nil, err
	}

	if s.Cfg.AdminExternalID != "" {
		notifyQuietly(s.Notifier, s.Cfg.AdminExternalID,
			fmt.Sprintf("🛂 @%s proposes %s for @%s.\nApprove?", DisplayName(&proposer), action.Kind, DisplayName(&target)),
			[]NotifyAction{
				{Label: "✅ Accept", Verb: "approve_admin_action", EntityID: action.ID},
				{Label: "❌ Reject", Verb: "reject_admin_action", EntityID: action.ID},
			})
	}
	return action, nil
}

// Resolve transitions a pending action. Only the primary approver may
// resolve manually; the expiry sweep resolves as SystemResolver. The payload
// applies exactly once, inside the same transaction as the conditional
// status update.
func (s *AdminService) Resolve(actionID string, outcome models.ApprovalStatus, actingPartyID string) (*models.AdminAction, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("invalid resolution outcome %q", outcome)
	}
	if actingPartyID == SystemResolver && outcome != models.StatusAutoAccepted {
		return nil, fmt.Errorf("system resolution must be auto_accepted, got %q", outcome)
	}
	if actingPartyID != SystemResolver && outcome == models.StatusAutoAccepted {
		return nil, fmt.Errorf("only the system resolver may auto-accept")
	}

	var action models.AdminAction
	if err := s.DB.First(&action, "id = ?", actionID).Error; err != nil {
		return nil, err
	}

	if actingPartyID != SystemResolver {
		var acting models.Account
		if err := s.DB.First(&acting, "id = ?", actingPartyID).Error; err != nil {
			return nil, err
		}
		if !s.isPrimaryApprover(&acting) {
			return nil, models.ErrNotAuthorized
		}
	}
	if action.Status.Terminal() {
		return &action, &models.AlreadyResolvedError{Status: action.Status}
	}

	var referrer *models.Account
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.AdminAction{}).
			Where("id = ? AND status = ?", action.ID, models.StatusPending).
			Updates(map[string]interface{}{"status": outcome, "resolved_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.AdminAction
			if err := tx.First(&current, "id = ?", action.ID).Error; err != nil {
				return err
			}
			return &models.AlreadyResolvedError{Status: current.Status}
		}
		action.Status = outcome
		action.ResolvedAt = &now

		if outcome.Credits() {
			ref, err := s.applyPayload(tx, &action)
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
			action.Status = already.Status
			return &action, already
		}
		return nil, err
	}

	var target models.Account
	if err := s.DB.First(&target, "id = ?", action.TargetID).Error; err == nil {
		s.notifyTarget(&action, &target)
	}
	if referrer != nil {
		notifyQuietly(s.Notifier, referrer.ExternalID,
			fmt.Sprintf("🎁 You earned a %s point referral bonus.", s.Cfg.ReferralBonus), nil)
	}
	return &action, nil
}

// ListPending returns open proposals, oldest first, for the approver's queue.
func (s *AdminService) ListPending() ([]models.AdminAction, error) {
	var actions []models.AdminAction
	err := s.DB.Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Find(&actions).Error
	return actions, err
}

// applyPayload performs the privileged mutation. It runs inside the
// resolving transaction, so the single-transition guarantee makes it fire at
// most once per action.
func (s *AdminService) applyPayload(tx *gorm.DB, action *models.AdminAction) (*models.Account, error) {
	switch action.Kind {
	case models.AdminGrantPoints:
		if err := s.Ledger.Credit(tx, action.TargetID, action.Amount, "admin grant"); err != nil {
			return nil, err
		}
		return applyReferralBonus(tx, s.Ledger, s.Cfg, action.TargetID)

	case models.AdminChangeHandle:
		if action.Value == "" {
			return nil, fmt.Errorf("change_handle requires a new handle")
		}
		res := tx.Model(&models.Account{}).Where("id = ?", action.TargetID).Update("handle", action.Value)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return nil, models.ErrHandleTaken
			}
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, nil

	case models.AdminCreateCoupon:
		code := action.Value
		if code == "" {
			code = strings.ToUpper(uuid.NewString()[:8])
		}
		coupon := &models.Coupon{
			ID:        uuid.NewString(),
			Code:      code,
			Value:     action.Amount,
			CreatedBy: action.ProposerID,
		}
		return nil, tx.Create(coupon).Error
	}
	return nil, fmt.Errorf("unknown admin action kind %q", action.Kind)
}

func (s *AdminService) isPrimaryApprover(acct *models.Account) bool {
	return s.Cfg.AdminExternalID != "" && acct.ExternalID == s.Cfg.AdminExternalID
}

func (s *AdminService) notifyTarget(action *models.AdminAction, target *models.Account) {
	var text string
	switch action.Kind {
	case models.AdminGrantPoints:
		switch action.Status {
		case models.StatusAccepted, models.StatusAutoAccepted:
			text = fmt.Sprintf("🎁 You received %s points from an administrator.", action.Amount)
		case models.StatusRejected:
			text = "❌ A proposed point grant for you was rejected."
		}
	case models.AdminChangeHandle:
		if action.Status.Credits() {
			text = fmt.Sprintf("✏️ Your handle was changed to @%s by an administrator.", action.Value)
		}
	case models.AdminCreateCoupon:
		// Coupon creation has no target-facing message.
	}
	if text != "" {
		notifyQuietly(s.Notifier, target.ExternalID, text, nil)
	}
}
