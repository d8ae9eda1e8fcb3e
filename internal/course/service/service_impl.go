package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/rjvb7424/learn-it-now/internal/config"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	GenID *snowflake.Node
	Repo  coursedomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     coursedomain.Repository
	minPrice float64
}

func New(p Params) coursedomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("course.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		minPrice: float64(p.Cfg.MinCoursePriceCents) / 100,
	}
}

func (s *Service) Create(ctx context.Context, req coursedomain.CreateCourseRequest) (coursedomain.Course, error) {
	creator := strings.TrimSpace(req.CreatorUID)
	if creator == "" {
		return coursedomain.Course{}, coursedomain.ErrInvalidCreator
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return coursedomain.Course{}, coursedomain.ErrInvalidTitle
	}
	if err := s.validatePrice(req.Price, req.IsFree); err != nil {
		return coursedomain.Course{}, err
	}

	now := time.Now().UTC()
	id := s.genID.Generate()
	course := coursedomain.Course{
		ID:          id,
		Slug:        fmt.Sprintf("%s-%s", slug.Make(title), id.Base36()),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		IsFree:      req.IsFree,
		CreatorUID:  creator,
		CreatedAt:   now,
		UpdatedAt:   now,
		Lessons:     s.buildLessons(id, req.Lessons),
	}

	if err := s.repo.Insert(ctx, s.db, &course); err != nil {
		return coursedomain.Course{}, err
	}
	return course, nil
}

func (s *Service) Update(ctx context.Context, req coursedomain.UpdateCourseRequest) (coursedomain.Course, error) {
	id, err := parseID(req.CourseID)
	if err != nil {
		return coursedomain.Course{}, err
	}

	stored, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return coursedomain.Course{}, err
	}
	if stored == nil {
		return coursedomain.Course{}, coursedomain.ErrNotFound
	}
	if stored.CreatorUID != strings.TrimSpace(req.CreatorUID) {
		return coursedomain.Course{}, coursedomain.ErrNotOwner
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return coursedomain.Course{}, coursedomain.ErrInvalidTitle
		}
		stored.Title = title
	}
	if req.Description != nil {
		stored.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		stored.Price = *req.Price
	}
	if req.IsFree != nil {
		stored.IsFree = *req.IsFree
	}
	if err := s.validatePrice(stored.Price, stored.IsFree); err != nil {
		return coursedomain.Course{}, err
	}
	if req.Lessons != nil {
		stored.Lessons = s.buildLessons(stored.ID, req.Lessons)
	} else {
		stored.Lessons = nil
	}
	stored.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, stored); err != nil {
		return coursedomain.Course{}, err
	}

	fresh, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return coursedomain.Course{}, err
	}
	if fresh == nil {
		return coursedomain.Course{}, coursedomain.ErrNotFound
	}
	return *fresh, nil
}

func (s *Service) List(ctx context.Context) ([]coursedomain.Course, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id string) (coursedomain.Course, error) {
	parsed, err := parseID(id)
	if err != nil {
		return coursedomain.Course{}, err
	}

	course, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return coursedomain.Course{}, err
	}
	if course == nil {
		return coursedomain.Course{}, coursedomain.ErrNotFound
	}
	return *course, nil
}

func (s *Service) validatePrice(price float64, isFree bool) error {
	if isFree {
		return nil
	}
	if price < s.minPrice {
		return coursedomain.ErrInvalidPrice
	}
	return nil
}

func (s *Service) buildLessons(courseID snowflake.ID, inputs []coursedomain.LessonInput) []coursedomain.Lesson {
	lessons := make([]coursedomain.Lesson, 0, len(inputs))
	for i, input := range inputs {
		lessons = append(lessons, coursedomain.Lesson{
			ID:       s.genID.Generate(),
			CourseID: courseID,
			Position: i,
			Title:    strings.TrimSpace(input.Title),
			Body:     input.Body,
		})
	}
	return lessons
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, coursedomain.ErrInvalidID
	}
	return id, nil
}
