package service

import (
	"context"
	"strings"
	"time"

	"github.com/rjvb7424/learn-it-now/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("user.service"),
		repo: p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertUserRequest) (domain.User, error) {
	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		return domain.User{}, domain.ErrInvalidUID
	}

	now := time.Now().UTC()
	user := domain.User{
		UID:         uid,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Email:       strings.TrimSpace(req.Email),
		AvatarURL:   strings.TrimSpace(req.AvatarURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Upsert(ctx, s.db, &user); err != nil {
		return domain.User{}, err
	}

	stored, err := s.repo.FindByUID(ctx, s.db, uid)
	if err != nil {
		return domain.User{}, err
	}
	if stored == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *stored, nil
}

func (s *Service) GetByUID(ctx context.Context, uid string) (domain.User, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return domain.User{}, domain.ErrInvalidUID
	}

	user, err := s.repo.FindByUID(ctx, s.db, uid)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}
