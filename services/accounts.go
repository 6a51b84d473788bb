package services

import (
	"errors"
	"fmt"
	"strings"

	"support-exchange-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Cfg      *Config
	Notifier Notifier
}

func NewAccountService(db *gorm.DB, ledger *LedgerService, cfg *Config, notifier Notifier) *AccountService {
	return &AccountService{DB: db, Ledger: ledger, Cfg: cfg, Notifier: notifier}
}

// GetByExternalID looks up the account behind a platform user id.
func (s *AccountService) GetByExternalID(externalID string) (*models.Account, error) {
	var acct models.Account
	if err := s.DB.First(&acct, "external_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// EnsureAccount registers an account on first contact (idempotent). New
// accounts get the signup grant as a ledger entry and their own referral
// token. An inviter token, when present and valid, fixes the referrer edge
// once and forever — self-referral and unknown tokens are silently ignored.
func (s *AccountService) EnsureAccount(externalID, inviterToken string) (*models.Account, bool, error) {
	var acct models.Account
	err := s.DB.First(&acct, "external_id = ?", externalID).Error
	if err == nil {
		return &acct, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	var referrerID *string
	if inviterToken != "" {
		var ref models.Account
		if err := s.DB.First(&ref, "referral_token = ?", inviterToken).Error; err == nil && ref.ExternalID != externalID {
			referrerID = &ref.ID
		}
	}

	acct = models.Account{
		ID:            uuid.NewString(),
		ExternalID:    externalID,
		Balance:       decimal.Zero,
		ReferrerID:    referrerID,
		ReferralToken: newReferralToken(externalID),
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&acct).Error; err != nil {
			return err
		}
		return s.Ledger.Credit(tx, acct.ID, s.Cfg.SignupGrant, "signup grant")
	})
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a concurrent first-contact race; the other insert won.
			var existing models.Account
			if ferr := s.DB.First(&existing, "external_id = ?", externalID).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}

	// Re-read for the post-grant balance.
	if err := s.DB.First(&acct, "id = ?", acct.ID).Error; err != nil {
		return nil, false, err
	}
	return &acct, true, nil
}

// SetHandle records the account's display handle, typically collected right
// after registration. Handles are unique across accounts.
func (s *AccountService) SetHandle(externalID, handle string) (*models.Account, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, fmt.Errorf("handle must not be empty")
	}

	acct, err := s.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}

	res := s.DB.Model(&models.Account{}).Where("id = ?", acct.ID).Update("handle", handle)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, models.ErrHandleTaken
		}
		return nil, res.Error
	}
	acct.Handle = &handle
	return acct, nil
}

// DisplayName is what notifications call an account: the handle when set,
// the raw platform id otherwise.
func DisplayName(acct *models.Account) string {
	if acct != nil && acct.Handle != nil && *acct.Handle != "" {
		return *acct.Handle
	}
	if acct != nil {
		return acct.ExternalID
	}
	return "unknown"
}

// newReferralToken derives a URL-safe invite token. Slugging normalizes
// whatever shape the platform id has; the uuid suffix keeps tokens unique
// even for colliding slugs.
func newReferralToken(externalID string) string {
	return slug.Make(fmt.Sprintf("%s-%s", externalID, uuid.NewString()[:8]))
}

// isUniqueViolation matches duplicate-key failures across Postgres (prod)
// and sqlite (tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
