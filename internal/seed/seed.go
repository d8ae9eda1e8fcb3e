package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
	userdomain "github.com/rjvb7424/learn-it-now/internal/user/domain"
	"gorm.io/gorm"
)

const (
	demoCreatorUID   = "demo-creator"
	demoCreatorName  = "Demo Creator"
	demoCreatorEmail = "creator@learnitnow.local"
	demoCourseTitle  = "Getting Started with Learn It Now"
)

// EnsureDemoContent seeds a demo creator and a free course for local
// development. Safe to run on every startup.
func EnsureDemoContent(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDemoCreator(ctx, tx); err != nil {
			return err
		}
		return ensureDemoCourse(ctx, tx, node)
	})
}

func ensureDemoCreator(ctx context.Context, tx *gorm.DB) error {
	var user userdomain.User
	err := tx.WithContext(ctx).Where("uid = ?", demoCreatorUID).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	return tx.WithContext(ctx).Create(&userdomain.User{
		UID:         demoCreatorUID,
		DisplayName: demoCreatorName,
		Email:       demoCreatorEmail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error
}

func ensureDemoCourse(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	err := tx.WithContext(ctx).Model(&coursedomain.Course{}).
		Where("creator_uid = ?", demoCreatorUID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	id := node.Generate()
	course := coursedomain.Course{
		ID:          id,
		Slug:        slug.Make(demoCourseTitle) + "-" + id.Base36(),
		Title:       demoCourseTitle,
		Description: "A short tour of the marketplace: browsing, enrolling, and tracking progress.",
		IsFree:      true,
		CreatorUID:  demoCreatorUID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Lessons: []coursedomain.Lesson{
			{ID: node.Generate(), CourseID: id, Position: 0, Title: "Welcome", Body: "What you can do here."},
			{ID: node.Generate(), CourseID: id, Position: 1, Title: "Enrolling in courses", Body: "Free and paid courses."},
			{ID: node.Generate(), CourseID: id, Position: 2, Title: "Selling your own", Body: "Payout onboarding in a nutshell."},
		},
	}
	return tx.WithContext(ctx).Create(&course).Error
}
