package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/mentorpay/mentorpay/internal/payout/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertRun(ctx context.Context, db *gorm.DB, run *domain.Run) error {
	return db.WithContext(ctx).Create(run).Error
}

func (r *repo) FindRun(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Run, error) {
	var run domain.Run
	err := db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repo) ListRuns(ctx context.Context, db *gorm.DB) ([]domain.Run, error) {
	var runs []domain.Run
	if err := db.WithContext(ctx).Order("created_at desc, id desc").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *repo) UpdateRun(ctx context.Context, db *gorm.DB, run *domain.Run) error {
	return db.WithContext(ctx).Save(run).Error
}

func (r *repo) MarkFinalized(ctx context.Context, db *gorm.DB, run *domain.Run) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Run{}).
		Where("id = ? AND status <> ?", run.ID, domain.RunStatusFinalized).
		Updates(map[string]any{
			"status":            domain.RunStatusFinalized,
			"total_net":         run.TotalNet,
			"total_adjustments": run.TotalAdjustments,
			"total_tax":         run.TotalTax,
			"session_count":     run.SessionCount,
			"mentor_count":      run.MentorCount,
			"updated_at":        run.UpdatedAt,
			"finalized_at":      run.FinalizedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) UpsertAdjustment(ctx context.Context, db *gorm.DB, adj *domain.Adjustment) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "run_id"}, {Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "reason", "updated_at",
		}),
	}).Create(adj).Error
}

func (r *repo) ListAdjustments(ctx context.Context, db *gorm.DB, runID snowflake.ID) ([]domain.Adjustment, error) {
	var adjustments []domain.Adjustment
	if err := db.WithContext(ctx).
		Where("run_id = ?", runID).
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}
