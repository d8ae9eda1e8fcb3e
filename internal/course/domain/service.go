package domain

import (
	"context"
	"errors"
)

type LessonInput struct {
	Title string
	Body  string
}

type CreateCourseRequest struct {
	CreatorUID  string
	Title       string
	Description string
	Price       float64
	IsFree      bool
	Lessons     []LessonInput
}

type UpdateCourseRequest struct {
	CourseID    string
	CreatorUID  string
	Title       *string
	Description *string
	Price       *float64
	IsFree      *bool
	Lessons     []LessonInput
}

type Service interface {
	Create(ctx context.Context, req CreateCourseRequest) (Course, error)
	Update(ctx context.Context, req UpdateCourseRequest) (Course, error)
	List(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id string) (Course, error)
}

var (
	ErrInvalidID      = errors.New("invalid_course_id")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrInvalidCreator = errors.New("invalid_creator")
	ErrNotFound       = errors.New("course_not_found")
	ErrNotOwner       = errors.New("not_course_owner")
)
