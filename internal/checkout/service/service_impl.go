package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rjvb7424/learn-it-now/internal/checkout/domain"
	"github.com/rjvb7424/learn-it-now/internal/config"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
	"github.com/rjvb7424/learn-it-now/internal/observability/metrics"
	purchasedomain "github.com/rjvb7424/learn-it-now/internal/purchase/domain"
	"github.com/rjvb7424/learn-it-now/internal/stripeconnect"
	userdomain "github.com/rjvb7424/learn-it-now/internal/user/domain"
	"github.com/rjvb7424/learn-it-now/pkg/origin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	Courses   coursedomain.Repository
	Users     userdomain.Repository
	Purchases purchasedomain.Service
	Stripe    stripeconnect.Client
	Metrics   *metrics.CheckoutMetrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       config.Config
	courses   coursedomain.Repository
	users     userdomain.Repository
	purchases purchasedomain.Service
	stripe    stripeconnect.Client
	metrics   *metrics.CheckoutMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("checkout.service"),
		cfg:       p.Cfg,
		courses:   p.Courses,
		users:     p.Users,
		purchases: p.Purchases,
		stripe:    p.Stripe,
		metrics:   p.Metrics,
	}
}

// minorUnits converts a major-unit price to integer cents, rounding halves
// away from zero. platformFee uses the same rule so the finalizer's
// integrity check re-derives identical amounts.
func minorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func (s *Service) platformFee(baseAmount int64) int64 {
	return int64(math.Round(float64(baseAmount) * s.cfg.PlatformFeePercent))
}

func (s *Service) StartCheckout(ctx context.Context, req domain.StartCheckoutRequest) (domain.StartCheckoutResponse, error) {
	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		return domain.StartCheckoutResponse{}, domain.ErrInvalidUID
	}
	courseID, err := snowflake.ParseString(strings.TrimSpace(req.CourseID))
	if err != nil {
		return domain.StartCheckoutResponse{}, coursedomain.ErrInvalidID
	}

	course, err := s.courses.FindByID(ctx, s.db, courseID)
	if err != nil {
		return domain.StartCheckoutResponse{}, err
	}
	if course == nil {
		return domain.StartCheckoutResponse{}, coursedomain.ErrNotFound
	}
	if course.CreatorUID == "" {
		return domain.StartCheckoutResponse{}, domain.ErrCourseMisconfigured
	}
	if course.IsFree || course.Price <= 0 {
		return domain.StartCheckoutResponse{}, domain.ErrCourseIsFree
	}

	creator, err := s.users.FindByUID(ctx, s.db, course.CreatorUID)
	if err != nil {
		return domain.StartCheckoutResponse{}, err
	}
	if creator == nil || creator.StripeAccountID == "" || !creator.StripeOnboarded {
		return domain.StartCheckoutResponse{}, domain.ErrCreatorNotOnboarded
	}

	baseAmount := minorUnits(course.Price)
	if baseAmount < s.cfg.MinCoursePriceCents {
		return domain.StartCheckoutResponse{}, domain.ErrPriceTooLow
	}
	fee := s.platformFee(baseAmount)

	base := origin.Normalize(req.Origin, s.cfg.PublicOrigin)
	session, err := s.stripe.CreateCheckoutSession(ctx, stripeconnect.CheckoutParams{
		SuccessURL:        origin.BuildURL(base, "/course/"+courseID.String()+"?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         base,
		ClientReferenceID: uid,
		LineItems: []stripeconnect.CheckoutLineItem{
			{Name: course.Title, Amount: baseAmount, Currency: s.cfg.Currency},
			{Name: "Service fee", Amount: fee, Currency: s.cfg.Currency},
		},
		DestinationAccountID: creator.StripeAccountID,
		ApplicationFeeAmount: fee,
		Metadata: map[string]string{
			domain.MetaUID:         uid,
			domain.MetaCourseID:    courseID.String(),
			domain.MetaCreatorID:   course.CreatorUID,
			domain.MetaBaseAmount:  strconv.FormatInt(baseAmount, 10),
			domain.MetaPlatformFee: strconv.FormatInt(fee, 10),
			domain.MetaCurrency:    s.cfg.Currency,
		},
	})
	if err != nil {
		return domain.StartCheckoutResponse{}, err
	}

	s.metrics.SessionStarted()
	s.log.Info("checkout session created",
		zap.String("uid", uid),
		zap.String("course_id", courseID.String()),
		zap.String("session_id", session.ID),
		zap.Int64("base_amount", baseAmount),
		zap.Int64("platform_fee", fee))

	return domain.StartCheckoutResponse{
		URL:         session.URL,
		ID:          session.ID,
		TotalAmount: baseAmount + fee,
	}, nil
}

func (s *Service) FinalizeCheckout(ctx context.Context, req domain.FinalizeRequest) (domain.FinalizeResponse, error) {
	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		return domain.FinalizeResponse{}, domain.ErrInvalidUID
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return domain.FinalizeResponse{}, domain.ErrInvalidSessionID
	}

	session, err := s.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.metrics.Finalized("processor_error")
		return domain.FinalizeResponse{}, err
	}
	if session.Mode != "payment" {
		s.metrics.Finalized("invalid_session")
		return domain.FinalizeResponse{}, domain.ErrInvalidSession
	}
	intent := session.PaymentIntent
	if intent == nil {
		s.metrics.Finalized("missing_payment")
		return domain.FinalizeResponse{}, domain.ErrMissingPayment
	}
	if session.PaymentStatus != "paid" && intent.Status != "succeeded" {
		// The normal outcome for an abandoned or cancelled checkout.
		s.metrics.Finalized("not_completed")
		return domain.FinalizeResponse{}, domain.ErrPaymentNotCompleted
	}

	courseID := metadataValue(session, intent, domain.MetaCourseID)
	buyer := metadataValue(session, intent, domain.MetaUID)
	if buyer == "" {
		buyer = session.ClientReferenceID
	}
	if courseID == "" || buyer == "" {
		s.metrics.Finalized("invalid_session")
		return domain.FinalizeResponse{}, domain.ErrInvalidSession
	}
	if buyer != uid {
		s.metrics.Finalized("identity_mismatch")
		return domain.FinalizeResponse{}, domain.ErrIdentityMismatch
	}

	s.verifyRecordedTotal(ctx, session, courseID)

	if _, err := s.purchases.Grant(ctx, uid, courseID); err != nil {
		s.metrics.Finalized("grant_failed")
		return domain.FinalizeResponse{}, err
	}
	s.metrics.PurchaseGranted()

	resp := domain.FinalizeResponse{
		OK:                  true,
		CourseID:            courseID,
		CustomerID:          session.CustomerID,
		ApplicationFeeCents: intent.ApplicationFeeAmount,
	}
	resp.ProcessingFeeCents = s.lookupProcessingFee(ctx, sessionID, intent)

	s.metrics.Finalized("ok")
	s.log.Info("checkout finalized",
		zap.String("uid", uid),
		zap.String("course_id", courseID),
		zap.String("session_id", sessionID),
		zap.Int64("application_fee_cents", resp.ApplicationFeeCents),
		zap.Int64("processing_fee_cents", resp.ProcessingFeeCents))
	return resp, nil
}

// verifyRecordedTotal compares the session's charged total against the total
// re-derived from current course state. The processor's amount is
// authoritative, so a mismatch only logs; prices may legitimately change
// between session creation and completion.
func (s *Service) verifyRecordedTotal(ctx context.Context, session *stripeconnect.CheckoutSession, courseID string) {
	id, err := snowflake.ParseString(courseID)
	if err != nil {
		return
	}
	course, err := s.courses.FindByID(ctx, s.db, id)
	if err != nil || course == nil {
		s.log.Warn("could not re-derive checkout total",
			zap.String("session_id", session.ID),
			zap.String("course_id", courseID),
			zap.Error(err))
		return
	}
	base := minorUnits(course.Price)
	expected := base + s.platformFee(base)
	if session.AmountTotal != expected {
		s.log.Warn("checkout total differs from current course price",
			zap.String("session_id", session.ID),
			zap.String("course_id", courseID),
			zap.Int64("charged", session.AmountTotal),
			zap.Int64("expected", expected))
	}
}

// lookupProcessingFee walks payment -> latest charge -> balance transaction
// to recover the processor's own cut. Failures are logged and reported as
// zero; the grant has already happened by the time this runs.
func (s *Service) lookupProcessingFee(ctx context.Context, sessionID string, intent *stripeconnect.PaymentIntent) int64 {
	charge, err := stripeconnect.ResolveCharge(ctx, s.stripe, intent.LatestCharge)
	if err != nil || charge == nil {
		s.feeLookupFailed(sessionID, err)
		return 0
	}
	txn, err := stripeconnect.ResolveBalanceTransaction(ctx, s.stripe, charge.BalanceTransaction)
	if err != nil || txn == nil {
		s.feeLookupFailed(sessionID, err)
		return 0
	}
	return txn.Fee
}

func (s *Service) feeLookupFailed(sessionID string, err error) {
	s.metrics.FeeLookupFailed()
	s.log.Warn("processing fee lookup failed",
		zap.String("session_id", sessionID),
		zap.Error(err))
}

func metadataValue(session *stripeconnect.CheckoutSession, intent *stripeconnect.PaymentIntent, key string) string {
	if v := session.Metadata[key]; v != "" {
		return v
	}
	if intent != nil {
		return intent.Metadata[key]
	}
	return ""
}
