package workers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"support-exchange-system/models"
	"support-exchange-system/utils"

	"gorm.io/gorm"
)

// LedgerExportClient periodically snapshots new ledger entries to object
// storage for offline audit. Pure read-side: a failed export never touches
// ledger state, the same window is just retried next tick.
type LedgerExportClient struct {
	DB *gorm.DB
}

func NewLedgerExportClient(db *gorm.DB) *LedgerExportClient {
	return &LedgerExportClient{DB: db}
}

// ExportSince collects entries created in (since, until] as CSV and uploads
// them under a timestamped key. Returns the number of exported rows.
func (c *LedgerExportClient) ExportSince(since, until time.Time) (int, error) {
	var entries []models.LedgerEntry
	if err := c.DB.
		Where("created_at > ? AND created_at <= ?", since, until).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "account_id", "amount", "reason", "created_at"})
	for _, e := range entries {
		_ = w.Write([]string{e.ID, e.AccountID, e.Amount.String(), e.Reason, e.CreatedAt.UTC().Format(time.RFC3339)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("failed to build CSV: %w", err)
	}

	key := fmt.Sprintf("ledger-exports/%s.csv", until.UTC().Format("20060102T150405Z"))
	if err := utils.UploadBytesToR2(key, "text/csv", buf.Bytes()); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// PollLedgerExports runs the export loop until ctx is cancelled.
func PollLedgerExports(ctx context.Context, client *LedgerExportClient, interval time.Duration) {
	log.Println("Starting ledger audit export worker...")
	lastExport := time.Now().UTC()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ledger export worker stopped.")
			return
		case <-ticker.C:
			until := time.Now().UTC()
			count, err := client.ExportSince(lastExport, until)
			if err != nil {
				// Do NOT advance lastExport on failure — retry same window next tick
				log.Printf("❌ Ledger export failed: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("✅ Exported %d ledger entr(ies) to R2.", count)
			}
			lastExport = until
		}
	}
}
