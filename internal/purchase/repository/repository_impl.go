package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rjvb7424/learn-it-now/internal/purchase/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, purchase *domain.Purchase) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(purchase).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, uid string, courseID snowflake.ID) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := db.WithContext(ctx).
		Where("uid = ? AND course_id = ?", uid, courseID).
		First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repo) ListByUID(ctx context.Context, db *gorm.DB, uid string) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	err := db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("purchased_at desc").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *repo) UpdateProgress(ctx context.Context, db *gorm.DB, uid string, courseID snowflake.ID, lessonIndex int) error {
	return db.WithContext(ctx).Model(&domain.Purchase{}).
		Where("uid = ? AND course_id = ?", uid, courseID).
		Updates(map[string]any{
			"current_lesson_index": lessonIndex,
			"updated_at":           time.Now().UTC(),
		}).Error
}
