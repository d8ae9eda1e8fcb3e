package domain

import (
	"context"
	"errors"
)

type SetProgressRequest struct {
	UID         string
	CourseID    string
	LessonIndex int
}

type Service interface {
	// Grant writes the purchase record for (uid, courseId). Attempts after
	// the first are no-ops, so callers may safely retry.
	Grant(ctx context.Context, uid, courseID string) (Purchase, error)
	// EnrollFree is the non-payment grant path, allowed only for free courses.
	EnrollFree(ctx context.Context, uid, courseID string) (Purchase, error)
	Get(ctx context.Context, uid, courseID string) (Purchase, error)
	ListByUser(ctx context.Context, uid string) ([]Purchase, error)
	SetProgress(ctx context.Context, req SetProgressRequest) (Purchase, error)
}

var (
	ErrInvalidUID    = errors.New("invalid_uid")
	ErrInvalidCourse = errors.New("invalid_course_id")
	ErrNotFound      = errors.New("purchase_not_found")
	ErrCourseNotFree = errors.New("course_not_free")
)
