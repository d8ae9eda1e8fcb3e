package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
	courserepo "github.com/rjvb7424/learn-it-now/internal/course/repository"
	"github.com/rjvb7424/learn-it-now/internal/purchase/domain"
	"github.com/rjvb7424/learn-it-now/internal/purchase/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&coursedomain.Course{}, &coursedomain.Lesson{}, &domain.Purchase{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		Repo:    repository.Provide(),
		Courses: courserepo.Provide(),
	})
	return svc, db, node
}

func seedCourse(t *testing.T, db *gorm.DB, node *snowflake.Node, isFree bool, lessons int) coursedomain.Course {
	t.Helper()
	course := coursedomain.Course{
		ID:         node.Generate(),
		Slug:       "seed-" + node.Generate().Base36(),
		Title:      "Intro to Testing",
		Price:      19.99,
		IsFree:     isFree,
		CreatorUID: "creator-1",
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	for i := 0; i < lessons; i++ {
		course.Lessons = append(course.Lessons, coursedomain.Lesson{
			ID:       node.Generate(),
			CourseID: course.ID,
			Position: i,
			Title:    "Lesson",
			Body:     "Body",
		})
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func TestGrant_Idempotent(t *testing.T) {
	svc, db, node := setupService(t)
	course := seedCourse(t, db, node, false, 3)
	ctx := context.Background()

	first, err := svc.Grant(ctx, "buyer-1", course.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", first.UID)
	assert.Equal(t, 0, first.CurrentLessonIndex)

	// A second grant must not reset the original record.
	_, err = svc.SetProgress(ctx, domain.SetProgressRequest{
		UID: "buyer-1", CourseID: course.ID.String(), LessonIndex: 2,
	})
	require.NoError(t, err)

	second, err := svc.Grant(ctx, "buyer-1", course.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, second.CurrentLessonIndex)
	assert.WithinDuration(t, first.PurchasedAt, second.PurchasedAt, time.Second)

	var count int64
	require.NoError(t, db.Model(&domain.Purchase{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGrant_Validation(t *testing.T) {
	svc, _, node := setupService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "", node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrInvalidUID)

	_, err = svc.Grant(ctx, "buyer-1", "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidCourse)
}

func TestEnrollFree(t *testing.T) {
	svc, db, node := setupService(t)
	ctx := context.Background()

	paid := seedCourse(t, db, node, false, 1)
	_, err := svc.EnrollFree(ctx, "buyer-1", paid.ID.String())
	assert.ErrorIs(t, err, domain.ErrCourseNotFree)

	free := seedCourse(t, db, node, true, 1)
	purchase, err := svc.EnrollFree(ctx, "buyer-1", free.ID.String())
	require.NoError(t, err)
	assert.Equal(t, free.ID, purchase.CourseID)

	_, err = svc.EnrollFree(ctx, "buyer-1", node.Generate().String())
	assert.ErrorIs(t, err, coursedomain.ErrNotFound)
}

func TestSetProgress_Clamping(t *testing.T) {
	svc, db, node := setupService(t)
	course := seedCourse(t, db, node, true, 3)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "buyer-1", course.ID.String())
	require.NoError(t, err)

	tests := []struct {
		name  string
		index int
		want  int
	}{
		{"within range", 1, 1},
		{"negative clamps to zero", -5, 0},
		{"past the last lesson clamps to it", 99, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SetProgress(ctx, domain.SetProgressRequest{
				UID: "buyer-1", CourseID: course.ID.String(), LessonIndex: tt.index,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.CurrentLessonIndex)
		})
	}
}

func TestSetProgress_LessonlessCoursePinsToZero(t *testing.T) {
	svc, db, node := setupService(t)
	course := seedCourse(t, db, node, true, 0)
	ctx := context.Background()

	_, err := svc.Grant(ctx, "buyer-1", course.ID.String())
	require.NoError(t, err)

	got, err := svc.SetProgress(ctx, domain.SetProgressRequest{
		UID: "buyer-1", CourseID: course.ID.String(), LessonIndex: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentLessonIndex)
}

func TestSetProgress_RequiresPurchase(t *testing.T) {
	svc, db, node := setupService(t)
	course := seedCourse(t, db, node, true, 1)

	_, err := svc.SetProgress(context.Background(), domain.SetProgressRequest{
		UID: "stranger", CourseID: course.ID.String(), LessonIndex: 0,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAndList(t *testing.T) {
	svc, db, node := setupService(t)
	ctx := context.Background()
	a := seedCourse(t, db, node, true, 1)
	b := seedCourse(t, db, node, true, 1)

	_, err := svc.Grant(ctx, "buyer-1", a.ID.String())
	require.NoError(t, err)
	_, err = svc.Grant(ctx, "buyer-1", b.ID.String())
	require.NoError(t, err)

	got, err := svc.Get(ctx, "buyer-1", a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.CourseID)

	_, err = svc.Get(ctx, "buyer-2", a.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.ListByUser(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
