package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
	"github.com/rjvb7424/learn-it-now/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Courses coursedomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	courses coursedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("purchase.service"),
		repo:    p.Repo,
		courses: p.Courses,
	}
}

func (s *Service) Grant(ctx context.Context, uid, courseID string) (domain.Purchase, error) {
	uid, id, err := s.parseKey(uid, courseID)
	if err != nil {
		return domain.Purchase{}, err
	}

	now := time.Now().UTC()
	purchase := domain.Purchase{
		UID:                uid,
		CourseID:           id,
		PurchasedAt:        now,
		CurrentLessonIndex: 0,
		UpdatedAt:          now,
	}
	if err := s.repo.Insert(ctx, s.db, &purchase); err != nil {
		return domain.Purchase{}, err
	}

	// Re-read so a retried grant returns the original record, not the
	// discarded insert.
	stored, err := s.repo.Find(ctx, s.db, uid, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	if stored == nil {
		return purchase, nil
	}
	return *stored, nil
}

func (s *Service) EnrollFree(ctx context.Context, uid, courseID string) (domain.Purchase, error) {
	uid, id, err := s.parseKey(uid, courseID)
	if err != nil {
		return domain.Purchase{}, err
	}

	course, err := s.courses.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	if course == nil {
		return domain.Purchase{}, coursedomain.ErrNotFound
	}
	if !course.IsFree {
		return domain.Purchase{}, domain.ErrCourseNotFree
	}

	return s.Grant(ctx, uid, courseID)
}

func (s *Service) Get(ctx context.Context, uid, courseID string) (domain.Purchase, error) {
	uid, id, err := s.parseKey(uid, courseID)
	if err != nil {
		return domain.Purchase{}, err
	}
	purchase, err := s.repo.Find(ctx, s.db, uid, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	if purchase == nil {
		return domain.Purchase{}, domain.ErrNotFound
	}
	return *purchase, nil
}

func (s *Service) ListByUser(ctx context.Context, uid string) ([]domain.Purchase, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, domain.ErrInvalidUID
	}
	return s.repo.ListByUID(ctx, s.db, uid)
}

func (s *Service) SetProgress(ctx context.Context, req domain.SetProgressRequest) (domain.Purchase, error) {
	uid, id, err := s.parseKey(req.UID, req.CourseID)
	if err != nil {
		return domain.Purchase{}, err
	}

	purchase, err := s.repo.Find(ctx, s.db, uid, id)
	if err != nil {
		return domain.Purchase{}, err
	}
	if purchase == nil {
		return domain.Purchase{}, domain.ErrNotFound
	}

	course, err := s.courses.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Purchase{}, err
	}

	// Clamp to the course's lesson range. A course with no lessons (or one
	// that has since been removed) pins progress at zero.
	index := req.LessonIndex
	if index < 0 {
		index = 0
	}
	if course == nil || len(course.Lessons) == 0 {
		index = 0
	} else if index > len(course.Lessons)-1 {
		index = len(course.Lessons) - 1
	}

	if err := s.repo.UpdateProgress(ctx, s.db, uid, id, index); err != nil {
		return domain.Purchase{}, err
	}
	purchase.CurrentLessonIndex = index
	purchase.UpdatedAt = time.Now().UTC()
	return *purchase, nil
}

func (s *Service) parseKey(uid, courseID string) (string, snowflake.ID, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", 0, domain.ErrInvalidUID
	}
	id, err := snowflake.ParseString(strings.TrimSpace(courseID))
	if err != nil {
		return "", 0, domain.ErrInvalidCourse
	}
	return uid, id, nil
}
