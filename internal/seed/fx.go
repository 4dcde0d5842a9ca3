package seed

import (
	"github.com/mentorpay/mentorpay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(Run),
)

func Run(cfg config.Config, db *gorm.DB, log *zap.Logger) error {
	if !cfg.SeedDemoData {
		return nil
	}
	if err := EnsureDemoData(db); err != nil {
		log.Error("demo data seeding failed", zap.Error(err))
		return err
	}
	log.Info("demo data seeded")
	return nil
}
