package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Course struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug        string       `gorm:"not null;uniqueIndex" json:"slug"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"not null" json:"description"`
	// Price is in major currency units; checkout converts to minor units.
	Price      float64   `gorm:"not null" json:"price"`
	IsFree     bool      `gorm:"not null" json:"isFree"`
	CreatorUID string    `gorm:"not null;index" json:"creatorUid"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`

	Lessons []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string { return "courses" }

type Lesson struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	CourseID snowflake.ID `gorm:"not null;index" json:"courseId"`
	Position int          `gorm:"not null" json:"position"`
	Title    string       `gorm:"not null" json:"title"`
	Body     string       `gorm:"not null" json:"body"`
}

func (Lesson) TableName() string { return "lessons" }

// EffectivePrice treats free courses as zero regardless of the stored value.
func (c Course) EffectivePrice() float64 {
	if c.IsFree {
		return 0
	}
	return c.Price
}
