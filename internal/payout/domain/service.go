package domain

import (
	"context"
	"errors"
	"time"
)

// AccountRef identifies a connected account either directly or through the
// owning user profile. At least one field must be set.
type AccountRef struct {
	UID       string
	AccountID string
}

type OnboardingLinkRequest struct {
	AccountRef
	// Origin is the raw Origin header of the request; it is normalized
	// before redirect URLs are built from it.
	Origin string
}

type OnboardingLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OnboardingStatus struct {
	AccountID string `json:"accountId"`
	Onboarded bool   `json:"onboarded"`
}

type Service interface {
	// CreateOrUpdatePayeeAccount creates the connected account for a
	// creator, or refreshes its identity fields when one already exists.
	// A profile never ends up with more than one account.
	CreateOrUpdatePayeeAccount(ctx context.Context, uid string) (string, error)
	CreateOnboardingLink(ctx context.Context, req OnboardingLinkRequest) (OnboardingLink, error)
	CreateDashboardLoginLink(ctx context.Context, ref AccountRef) (string, error)
	CheckOnboarded(ctx context.Context, ref AccountRef) (OnboardingStatus, error)
	// CompleteOnboarding re-checks the account and persists the verdict on
	// the owning profile.
	CompleteOnboarding(ctx context.Context, ref AccountRef) (OnboardingStatus, error)
}

var (
	ErrMissingIdentifier = errors.New("missing_identifier")
	ErrUserNotFound      = errors.New("user_not_found")
	ErrNoAccount         = errors.New("no_account_found")
	ErrAccountMismatch   = errors.New("account_mismatch")
)
