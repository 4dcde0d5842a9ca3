package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorpay/mentorpay/internal/webhook/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, endpoint *domain.Endpoint) error {
	return db.WithContext(ctx).Create(endpoint).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Endpoint, error) {
	var endpoint domain.Endpoint
	err := db.WithContext(ctx).First(&endpoint, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &endpoint, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Endpoint, error) {
	var endpoints []domain.Endpoint
	if err := db.WithContext(ctx).Order("created_at desc, id desc").Find(&endpoints).Error; err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Endpoint, error) {
	var endpoints []domain.Endpoint
	if err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at asc, id asc").
		Find(&endpoints).Error; err != nil {
		return nil, err
	}
	return endpoints, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, endpoint *domain.Endpoint) error {
	return db.WithContext(ctx).Save(endpoint).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Endpoint{}, "id = ?", id).Error
}

func (r *repo) InsertAttempt(ctx context.Context, db *gorm.DB, attempt *domain.DeliveryAttempt) error {
	return db.WithContext(ctx).Create(attempt).Error
}

func (r *repo) ListAttempts(ctx context.Context, db *gorm.DB, endpointID snowflake.ID, limit int) ([]domain.DeliveryAttempt, error) {
	var attempts []domain.DeliveryAttempt
	stmt := db.WithContext(ctx).
		Where("endpoint_id = ?", endpointID).
		Order("created_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
