package repository

import (
	"context"
	"errors"

	"github.com/mentorpay/mentorpay/internal/tax/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB) (*domain.Setting, error) {
	var setting domain.Setting
	err := db.WithContext(ctx).Order("updated_at desc, id desc").First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, setting *domain.Setting) error {
	return db.WithContext(ctx).Save(setting).Error
}
