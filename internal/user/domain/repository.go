package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByUID(ctx context.Context, db *gorm.DB, uid string) (*User, error)
	Upsert(ctx context.Context, db *gorm.DB, user *User) error
	SetStripeAccount(ctx context.Context, db *gorm.DB, uid, accountID string) error
	SetStripeOnboarded(ctx context.Context, db *gorm.DB, uid string, onboarded bool) error
}
