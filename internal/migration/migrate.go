package migration

import (
	auditdomain "github.com/mentorpay/mentorpay/internal/audit/domain"
	payoutdomain "github.com/mentorpay/mentorpay/internal/payout/domain"
	sessiondomain "github.com/mentorpay/mentorpay/internal/session/domain"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
	webhookdomain "github.com/mentorpay/mentorpay/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

// Run migrates all models. Safe to run on every start.
func Run(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&sessiondomain.Session{},
		&taxdomain.Setting{},
		&payoutdomain.Run{},
		&payoutdomain.Adjustment{},
		&webhookdomain.Endpoint{},
		&webhookdomain.DeliveryAttempt{},
		&auditdomain.AuditLog{},
	)
	if err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}
	log.Info("database migration complete")
	return nil
}
