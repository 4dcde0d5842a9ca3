package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/mentorpay/mentorpay/internal/config"
	"github.com/mentorpay/mentorpay/internal/session/domain"
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
	Cfg   config.Config
	Repo  domain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	minRate float64
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("session.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		minRate: p.Cfg.MinRatePerHour,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Session, error) {
	if strings.TrimSpace(req.MentorID) == "" {
		return nil, domain.ErrInvalidMentor
	}
	if !req.SessionType.Valid() {
		return nil, domain.ErrInvalidSessionType
	}
	if req.DurationMinutes < 15 || req.DurationMinutes%15 != 0 {
		return nil, fmt.Errorf("%w: duration must be a positive multiple of 15 minutes", domain.ErrInvalidDuration)
	}
	if req.RatePerHour < s.minRate {
		return nil, fmt.Errorf("%w: rate below %.0f", domain.ErrInvalidRate, s.minRate)
	}
	now := s.clock.Now()
	if req.SessionDate.After(now) {
		return nil, domain.ErrFutureSessionDate
	}

	session := &domain.Session{
		ID:              s.genID.Generate(),
		MentorID:        strings.TrimSpace(req.MentorID),
		MentorName:      strings.TrimSpace(req.MentorName),
		SessionDate:     req.SessionDate.UTC(),
		SessionType:     req.SessionType,
		DurationMinutes: req.DurationMinutes,
		RatePerHour:     req.RatePerHour,
		Payout:          req.Payout,
		Status:          domain.StatusPendingReview,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, s.db, session); err != nil {
		s.log.Error("failed to create session", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return session, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Session, error) {
	session, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Session, error) {
	sessions, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return sessions, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) MarkPaid(ctx context.Context, ids []snowflake.ID) error {
	if err := s.repo.UpdateStatus(ctx, s.db, ids, domain.StatusPaid); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
