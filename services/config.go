package services

import (
	"log"
	"os"
	"time"

	"support-exchange-system/models"

	"github.com/shopspring/decimal"
)

// Config carries every tunable point value and window. Values are read once
// at startup; interactions freeze their point value at creation, so changing
// config never rewrites open claims.
type Config struct {
	SignupGrant decimal.Decimal

	FollowPublishCost decimal.Decimal
	VideoPublishCost  decimal.Decimal
	LivePublishCost   decimal.Decimal

	FollowSupportPoints decimal.Decimal
	VideoSupportPoints  decimal.Decimal
	LiveSupportPoints   decimal.Decimal

	ReferralBonus decimal.Decimal

	ApprovalWindow time.Duration // pending claims auto-accept after this
	SweepInterval  time.Duration

	AdminExternalID    string // primary approver's platform user id
	BroadcastChannelID string // gateway channel for publish announcements (optional)
}

// LoadConfig reads env vars with deployment defaults.
func LoadConfig() *Config {
	return &Config{
		SignupGrant:         envDecimal("SIGNUP_GRANT", "10"),
		FollowPublishCost:   envDecimal("FOLLOW_PUBLISH_COST", "3"),
		VideoPublishCost:    envDecimal("VIDEO_PUBLISH_COST", "5"),
		LivePublishCost:     envDecimal("LIVE_PUBLISH_COST", "5"),
		FollowSupportPoints: envDecimal("FOLLOW_SUPPORT_POINTS", "2"),
		VideoSupportPoints:  envDecimal("VIDEO_SUPPORT_POINTS", "3"),
		LiveSupportPoints:   envDecimal("LIVE_SUPPORT_POINTS", "3"),
		ReferralBonus:       envDecimal("REFERRAL_BONUS", "1"),
		ApprovalWindow:      envDuration("APPROVAL_WINDOW", 48*time.Hour),
		SweepInterval:       envDuration("SWEEP_INTERVAL", time.Minute),
		AdminExternalID:     os.Getenv("ADMIN_EXTERNAL_ID"),
		BroadcastChannelID:  os.Getenv("BROADCAST_CHANNEL_ID"),
	}
}

// PublishCost returns what publishing an item of the given kind debits.
func (c *Config) PublishCost(kind models.SupportKind) decimal.Decimal {
	switch kind {
	case models.SupportKindFollow:
		return c.FollowPublishCost
	case models.SupportKindVideo:
		return c.VideoPublishCost
	case models.SupportKindLive:
		return c.LivePublishCost
	}
	return decimal.Zero
}

// SupportPoints returns what an accepted claim on the given kind pays out.
func (c *Config) SupportPoints(kind models.SupportKind) decimal.Decimal {
	switch kind {
	case models.SupportKindFollow:
		return c.FollowSupportPoints
	case models.SupportKindVideo:
		return c.VideoSupportPoints
	case models.SupportKindLive:
		return c.LiveSupportPoints
	}
	return decimal.Zero
}

func envDecimal(name, fallback string) decimal.Decimal {
	raw := os.Getenv(name)
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %s", name, raw, fallback)
		d, _ = decimal.NewFromString(fallback)
	}
	return d
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %s", name, raw, fallback)
		return fallback
	}
	return d
}
