package domain

import (
	"context"
	"errors"
)

// Metadata keys attached to every checkout session. They are the only
// channel through which finalize recovers the purchase context after the
// processor redirect, so they are kept redundant with the session's
// client reference id.
const (
	MetaUID         = "uid"
	MetaCourseID    = "courseId"
	MetaCreatorID   = "creatorId"
	MetaBaseAmount  = "baseAmount"
	MetaPlatformFee = "platformFee"
	MetaCurrency    = "currency"
)

type StartCheckoutRequest struct {
	UID      string
	CourseID string
	// Origin is the raw Origin header; redirect URLs are built from its
	// normalized form.
	Origin string
}

type StartCheckoutResponse struct {
	URL         string `json:"url"`
	ID          string `json:"id"`
	TotalAmount int64  `json:"totalAmount"`
}

type FinalizeRequest struct {
	UID       string
	SessionID string
}

type FinalizeResponse struct {
	OK         bool   `json:"ok"`
	CourseID   string `json:"courseId"`
	CustomerID string `json:"customerId,omitempty"`
	// Fee fields are reporting-only and best-effort; a zero value means
	// the lookup did not complete, not that the fee was zero.
	ApplicationFeeCents int64 `json:"applicationFeeCents,omitempty"`
	ProcessingFeeCents  int64 `json:"processingFeeCents,omitempty"`
}

type Service interface {
	// StartCheckout creates a hosted payment session for a paid course.
	// It mutates no local state; all side effects live at the processor
	// until FinalizeCheckout.
	StartCheckout(ctx context.Context, req StartCheckoutRequest) (StartCheckoutResponse, error)
	// FinalizeCheckout re-reads the session from the processor, verifies
	// payment, and grants access. Safe to call repeatedly for the same
	// session.
	FinalizeCheckout(ctx context.Context, req FinalizeRequest) (FinalizeResponse, error)
}

var (
	ErrInvalidUID          = errors.New("invalid_uid")
	ErrInvalidSessionID    = errors.New("invalid_session_id")
	ErrCourseMisconfigured = errors.New("course_misconfigured")
	ErrCourseIsFree        = errors.New("course_is_free")
	ErrCreatorNotOnboarded = errors.New("creator_not_onboarded")
	ErrPriceTooLow         = errors.New("price_too_low")
	ErrInvalidSession      = errors.New("invalid_session")
	ErrMissingPayment      = errors.New("missing_payment")
	ErrPaymentNotCompleted = errors.New("payment_not_completed")
	ErrIdentityMismatch    = errors.New("identity_mismatch")
)
