package domain

import "time"

// User is a signed-in principal's profile. The UID comes from the external
// identity provider and is stable across sessions.
type User struct {
	UID             string    `gorm:"primaryKey;column:uid" json:"uid"`
	DisplayName     string    `gorm:"not null" json:"displayName"`
	Email           string    `gorm:"not null" json:"email"`
	AvatarURL       string    `gorm:"not null" json:"avatarUrl"`
	StripeAccountID string    `gorm:"not null" json:"stripeAccountId,omitempty"`
	StripeOnboarded bool      `gorm:"not null" json:"stripeOnboarded"`
	CreatedAt       time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// FirstLastName splits the display name into Stripe's first/last fields.
// Single-token names yield no last name.
func (u User) FirstLastName() (string, string) {
	fields := splitName(u.DisplayName)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], joinName(fields[1:])
	}
}
