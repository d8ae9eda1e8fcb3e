package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/rjvb7424/learn-it-now/internal/course/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, course *domain.Course) error {
	return db.WithContext(ctx).Create(course).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, course *domain.Course) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Course{}).
			Where("id = ?", course.ID).
			Updates(map[string]any{
				"title":       course.Title,
				"description": course.Description,
				"price":       course.Price,
				"is_free":     course.IsFree,
				"updated_at":  course.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		if course.Lessons == nil {
			return nil
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&domain.Lesson{}).Error; err != nil {
			return err
		}
		if len(course.Lessons) == 0 {
			return nil
		}
		return tx.Create(&course.Lessons).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Course, error) {
	var course domain.Course
	err := db.WithContext(ctx).
		Preload("Lessons", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position asc")
		}).
		Where("id = ?", id).
		First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Course, error) {
	var courses []domain.Course
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}
