package services

import (
	"fmt"
	"log"
	"strings"

	"support-exchange-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Cfg      *Config
	Notifier Notifier
}

func NewCatalogService(db *gorm.DB, ledger *LedgerService, cfg *Config, notifier Notifier) *CatalogService {
	return &CatalogService{DB: db, Ledger: ledger, Cfg: cfg, Notifier: notifier}
}

// PublishContent is the user-supplied body of a support item.
type PublishContent struct {
	Link        string `json:"link"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"`
}

// Publish debits the kind's cost and inserts the item in one transaction.
// An insufficient balance leaves no item behind. After commit the broadcast
// channel gets a best-effort announcement.
func (s *CatalogService) Publish(ownerID string, kind models.SupportKind, content PublishContent) (*models.SupportItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown support kind %q", kind)
	}
	content.Link = strings.TrimSpace(content.Link)
	if content.Link == "" {
		return nil, fmt.Errorf("link must not be empty")
	}

	var owner models.Account
	if err := s.DB.First(&owner, "id = ?", ownerID).Error; err != nil {
		return nil, err
	}

	item := &models.SupportItem{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Kind:        kind,
		Link:        content.Link,
		Title:       content.Title,
		Description: content.Description,
		Variant:     content.Variant,
	}

	cost := s.Cfg.PublishCost(kind)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Ledger.Debit(tx, ownerID, cost, fmt.Sprintf("publish %s", kind)); err != nil {
			return err
		}
		return tx.Create(item).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📢 Published %s item %s by %s (cost %s)", kind, item.ID, DisplayName(&owner), cost)
	if s.Cfg.BroadcastChannelID != "" {
		notifyQuietly(s.Notifier, s.Cfg.BroadcastChannelID,
			fmt.Sprintf("📢 New %s published by @%s\n🔗 %s", kind, DisplayName(&owner), item.Link), nil)
	}
	return item, nil
}

// ListAvailable returns items of the given kind the requester can still
// claim: not their own, newest first, minus anything they already created an
// interaction for. The same item is never re-offered to someone who claimed
// it, whatever the claim's outcome.
func (s *CatalogService) ListAvailable(kind models.SupportKind, requesterID string) ([]models.SupportItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown support kind %q", kind)
	}

	claimed := s.DB.Model(&models.Interaction{}).
		Select("item_id").
		Where("kind = ? AND actor_id = ?", kind, requesterID)

	var items []models.SupportItem
	err := s.DB.Where("kind = ? AND owner_id <> ?", kind, requesterID).
		Where("id NOT IN (?)", claimed).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}
