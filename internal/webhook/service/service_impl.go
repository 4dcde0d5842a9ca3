package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorpay/mentorpay/internal/clock"
	"github.com/mentorpay/mentorpay/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Dispatcher domain.Dispatcher
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	dispatcher domain.Dispatcher
}

func NewService(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("webhook.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		dispatcher: p.Dispatcher,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEndpointRequest) (*domain.Endpoint, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	endpointURL, err := validateURL(req.URL)
	if err != nil {
		return nil, err
	}
	secret := strings.TrimSpace(req.Secret)
	if secret == "" {
		return nil, domain.ErrInvalidSecret
	}

	events := req.Events
	if len(events) == 0 {
		events = []string{domain.EventPayoutProcessed}
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now()
	endpoint := &domain.Endpoint{
		ID:        s.genID.Generate(),
		Name:      name,
		URL:       endpointURL,
		Secret:    secret,
		Active:    active,
		Events:    datatypes.NewJSONSlice(events),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, endpoint); err != nil {
		return nil, err
	}
	return endpoint, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Endpoint, error) {
	return s.find(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Endpoint, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateEndpointRequest) (*domain.Endpoint, error) {
	endpoint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		endpoint.Name = name
	}
	if req.URL != nil {
		endpointURL, err := validateURL(*req.URL)
		if err != nil {
			return nil, err
		}
		endpoint.URL = endpointURL
	}
	if req.Secret != nil {
		secret := strings.TrimSpace(*req.Secret)
		if secret == "" {
			return nil, domain.ErrInvalidSecret
		}
		endpoint.Secret = secret
	}
	if req.Active != nil {
		endpoint.Active = *req.Active
	}
	if req.Events != nil {
		endpoint.Events = datatypes.NewJSONSlice(*req.Events)
	}
	endpoint.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, endpoint); err != nil {
		return nil, err
	}
	return endpoint, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) ListActive(ctx context.Context, event string) ([]domain.Endpoint, error) {
	endpoints, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	subscribed := make([]domain.Endpoint, 0, len(endpoints))
	for _, endpoint := range endpoints {
		if endpoint.SubscribedTo(event) {
			subscribed = append(subscribed, endpoint)
		}
	}
	return subscribed, nil
}

func (s *Service) Test(ctx context.Context, id snowflake.ID) (*domain.DeliveryAttempt, error) {
	endpoint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	attempt := s.dispatcher.Deliver(ctx, *endpoint, domain.EventWebhookTest, map[string]any{
		"endpoint_id": endpoint.ID.String(),
		"timestamp":   s.clock.Now(),
	})
	return &attempt, nil
}

func (s *Service) ListDeliveries(ctx context.Context, endpointID snowflake.ID, limit int) ([]domain.DeliveryAttempt, error) {
	if _, err := s.find(ctx, endpointID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListAttempts(ctx, s.db, endpointID, limit)
}

func (s *Service) find(ctx context.Context, id snowflake.ID) (*domain.Endpoint, error) {
	endpoint, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if endpoint == nil {
		return nil, domain.ErrEndpointNotFound
	}
	return endpoint, nil
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", domain.ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", domain.ErrInvalidURL
	}
	return raw, nil
}
