package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert creates the purchase unless one already exists; existing rows
	// are left untouched.
	Insert(ctx context.Context, db *gorm.DB, purchase *Purchase) error
	Find(ctx context.Context, db *gorm.DB, uid string, courseID snowflake.ID) (*Purchase, error)
	ListByUID(ctx context.Context, db *gorm.DB, uid string) ([]Purchase, error)
	UpdateProgress(ctx context.Context, db *gorm.DB, uid string, courseID snowflake.ID, lessonIndex int) error
}
