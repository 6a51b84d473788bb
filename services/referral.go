package services

import (
	"support-exchange-system/models"

	"gorm.io/gorm"
)

// applyReferralBonus credits the actor's referrer the configured bonus.
// It runs inside the resolving transaction, so it fires at most once per
// resolution — the single-transition guarantee of the caller is what makes
// the cascade idempotent. Returns the credited referrer (nil when the actor
// has none) so the caller can notify after commit.
func applyReferralBonus(tx *gorm.DB, ledger *LedgerService, cfg *Config, actorID string) (*models.Account, error) {
	var actor models.Account
	if err := tx.First(&actor, "id = ?", actorID).Error; err != nil {
		return nil, err
	}
	if actor.ReferrerID == nil {
		return nil, nil
	}

	var referrer models.Account
	if err := tx.First(&referrer, "id = ?", *actor.ReferrerID).Error; err != nil {
		return nil, err
	}

	if err := ledger.Credit(tx, referrer.ID, cfg.ReferralBonus, "referral bonus"); err != nil {
		return nil, err
	}
	return &referrer, nil
}
