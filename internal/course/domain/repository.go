package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, course *Course) error
	Update(ctx context.Context, db *gorm.DB, course *Course) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Course, error)
	List(ctx context.Context, db *gorm.DB) ([]Course, error)
}
