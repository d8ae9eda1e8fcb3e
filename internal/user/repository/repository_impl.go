package repository

import (
	"context"
	"errors"

	"github.com/rjvb7424/learn-it-now/internal/user/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByUID(ctx context.Context, db *gorm.DB, uid string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name", "email", "avatar_url", "updated_at",
		}),
	}).Create(user).Error
}

func (r *repo) SetStripeAccount(ctx context.Context, db *gorm.DB, uid, accountID string) error {
	return db.WithContext(ctx).Model(&domain.User{}).
		Where("uid = ?", uid).
		Updates(map[string]any{
			"stripe_account_id": accountID,
			"stripe_onboarded":  false,
		}).Error
}

func (r *repo) SetStripeOnboarded(ctx context.Context, db *gorm.DB, uid string, onboarded bool) error {
	stmt := db.WithContext(ctx).Model(&domain.User{}).Where("uid = ?", uid)
	if onboarded {
		// Never mark a profile onboarded without a stored account id.
		stmt = stmt.Where("stripe_account_id <> ''")
	}
	return stmt.Updates(map[string]any{
		"stripe_onboarded": onboarded,
	}).Error
}
