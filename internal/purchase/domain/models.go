package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Purchase is the durable grant of course access to a buyer. Its existence
// is the sole authorization check for content access.
type Purchase struct {
	UID                string       `gorm:"primaryKey;column:uid" json:"uid"`
	CourseID           snowflake.ID `gorm:"primaryKey" json:"courseId"`
	PurchasedAt        time.Time    `gorm:"not null" json:"purchasedAt"`
	CurrentLessonIndex int          `gorm:"not null" json:"currentLessonIndex"`
	UpdatedAt          time.Time    `gorm:"not null" json:"updatedAt"`
}

func (Purchase) TableName() string { return "purchases" }
