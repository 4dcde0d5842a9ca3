// Package seed bootstraps demo data for local development. Seeding is
// idempotent: it only writes when the relevant table is empty.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	sessiondomain "github.com/mentorpay/mentorpay/internal/session/domain"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
	webhookdomain "github.com/mentorpay/mentorpay/internal/webhook/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureDemoData populates a fresh database with a handful of pending
// sessions, the default tax configuration, and an inactive example webhook
// endpoint so the admin UI has something to show.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(9)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTaxSetting(tx, node); err != nil {
			return err
		}
		if err := ensureSessions(tx, node); err != nil {
			return err
		}
		return ensureWebhookEndpoint(tx, node)
	})
}

func ensureTaxSetting(tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.Model(&taxdomain.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := taxdomain.Default()
	now := time.Now().UTC()
	return tx.Create(&taxdomain.Setting{
		ID:                 node.Generate(),
		PlatformFeePercent: defaults.PlatformFeePercent,
		GSTPercent:         defaults.GSTPercent,
		TDSPercent:         defaults.TDSPercent,
		CreatedAt:          now,
		UpdatedAt:          now,
	}).Error
}

func ensureSessions(tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.Model(&sessiondomain.Session{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	explicit := 5000.0
	sessions := []sessiondomain.Session{
		{
			ID:              node.Generate(),
			MentorID:        "mentor-asha",
			MentorName:      "Asha Rao",
			SessionDate:     now.Add(-72 * time.Hour),
			SessionType:     sessiondomain.TypeLive,
			DurationMinutes: 60,
			RatePerHour:     4000,
			Status:          sessiondomain.StatusPendingReview,
		},
		{
			ID:              node.Generate(),
			MentorID:        "mentor-asha",
			MentorName:      "Asha Rao",
			SessionDate:     now.Add(-48 * time.Hour),
			SessionType:     sessiondomain.TypeRecorded,
			DurationMinutes: 30,
			RatePerHour:     2000,
			Status:          sessiondomain.StatusPendingReview,
		},
		{
			ID:              node.Generate(),
			MentorID:        "mentor-vikram",
			MentorName:      "Vikram Shah",
			SessionDate:     now.Add(-24 * time.Hour),
			SessionType:     sessiondomain.TypeEvaluation,
			DurationMinutes: 45,
			RatePerHour:     3000,
			Payout:          &explicit,
			Status:          sessiondomain.StatusPendingReview,
		},
	}
	for i := range sessions {
		sessions[i].CreatedAt = now
		sessions[i].UpdatedAt = now
	}
	return tx.Create(&sessions).Error
}

func ensureWebhookEndpoint(tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.Model(&webhookdomain.Endpoint{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	return tx.Create(&webhookdomain.Endpoint{
		ID:     node.Generate(),
		Name:   "example-receiver",
		URL:    "https://example.com/mentorpay/hooks",
		Secret: "whsec_change_me",
		// Inactive so demo finalizes do not post anywhere.
		Active:    false,
		Events:    datatypes.NewJSONSlice([]string{webhookdomain.EventPayoutProcessed}),
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}
