package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorpay/mentorpay/internal/session/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Session, error) {
	var sessions []domain.Session
	stmt := db.WithContext(ctx).Model(&domain.Session{})

	if mentorID := strings.TrimSpace(filter.MentorID); mentorID != "" {
		stmt = stmt.Where("mentor_id = ?", mentorID)
	}
	if len(filter.Statuses) > 0 {
		stmt = stmt.Where("status IN ?", filter.Statuses)
	}

	if err := stmt.Order("session_date desc, id desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, ids []snowflake.ID, status domain.Status) error {
	if len(ids) == 0 {
		return nil
	}
	return db.WithContext(ctx).Model(&domain.Session{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}
