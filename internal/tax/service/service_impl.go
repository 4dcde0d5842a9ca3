package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/mentorpay/mentorpay/internal/audit/domain"
	"github.com/mentorpay/mentorpay/internal/clock"
	taxdomain "github.com/mentorpay/mentorpay/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  taxdomain.Repository
	Audit auditdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  taxdomain.Repository
	audit auditdomain.Service
}

func NewService(p Params) taxdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Current(ctx context.Context) (taxdomain.Config, error) {
	setting, err := s.repo.Latest(ctx, s.db)
	if err != nil {
		return taxdomain.Config{}, err
	}
	if setting == nil {
		return taxdomain.Default(), nil
	}
	return setting.Config(), nil
}

func (s *Service) Update(ctx context.Context, cfg taxdomain.Config) (taxdomain.Config, error) {
	if err := cfg.Validate(); err != nil {
		return taxdomain.Config{}, err
	}

	old, err := s.Current(ctx)
	if err != nil {
		return taxdomain.Config{}, err
	}

	now := s.clock.Now()
	setting := &taxdomain.Setting{
		ID:                 s.genID.Generate(),
		PlatformFeePercent: cfg.PlatformFeePercent,
		GSTPercent:         cfg.GSTPercent,
		TDSPercent:         cfg.TDSPercent,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Upsert(ctx, s.db, setting); err != nil {
		return taxdomain.Config{}, err
	}

	s.audit.Record(ctx, auditdomain.Entry{
		Action:     "tax_config.updated",
		TargetType: "tax_config",
		TargetID:   setting.ID.String(),
		Metadata: map[string]any{
			"old": old,
			"new": cfg,
		},
	})

	return cfg, nil
}
