package service

import (
	"context"
	"strings"

	"github.com/rjvb7424/learn-it-now/internal/config"
	"github.com/rjvb7424/learn-it-now/internal/payout/domain"
	"github.com/rjvb7424/learn-it-now/internal/stripeconnect"
	userdomain "github.com/rjvb7424/learn-it-now/internal/user/domain"
	"github.com/rjvb7424/learn-it-now/pkg/origin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const productDescription = "Online courses sold on the Learn It Now marketplace"

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Cfg    config.Config
	Users  userdomain.Repository
	Stripe stripeconnect.Client
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	cfg    config.Config
	users  userdomain.Repository
	stripe stripeconnect.Client
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("payout.service"),
		cfg:    p.Cfg,
		users:  p.Users,
		stripe: p.Stripe,
	}
}

func (s *Service) CreateOrUpdatePayeeAccount(ctx context.Context, uid string) (string, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", domain.ErrMissingIdentifier
	}

	user, err := s.users.FindByUID(ctx, s.db, uid)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}

	first, last := user.FirstLastName()

	if user.StripeAccountID != "" {
		account, err := s.stripe.UpdateAccount(ctx, user.StripeAccountID, stripeconnect.UpdateAccountParams{
			Email:     user.Email,
			FirstName: first,
			LastName:  last,
		})
		if err != nil {
			return "", err
		}
		return account.ID, nil
	}

	account, err := s.stripe.CreateAccount(ctx, stripeconnect.CreateAccountParams{
		Email:              user.Email,
		FirstName:          first,
		LastName:           last,
		BusinessURL:        s.cfg.PlatformURL,
		ProductDescription: productDescription,
		MCC:                s.cfg.PlatformMCC,
	})
	if err != nil {
		return "", err
	}

	if err := s.users.SetStripeAccount(ctx, s.db, uid, account.ID); err != nil {
		return "", err
	}

	s.log.Info("payee account created",
		zap.String("uid", uid),
		zap.String("account_id", account.ID))
	return account.ID, nil
}

func (s *Service) CreateOnboardingLink(ctx context.Context, req domain.OnboardingLinkRequest) (domain.OnboardingLink, error) {
	accountID, err := s.resolveAccountID(ctx, req.AccountRef)
	if err != nil {
		return domain.OnboardingLink{}, err
	}

	base := origin.Normalize(req.Origin, s.cfg.PublicOrigin)
	link, err := s.stripe.CreateAccountLink(ctx, stripeconnect.AccountLinkParams{
		AccountID:  accountID,
		ReturnURL:  origin.BuildURL(base, "/return/"+accountID),
		RefreshURL: origin.BuildURL(base, "/refresh/"+accountID),
	})
	if err != nil {
		return domain.OnboardingLink{}, err
	}
	return domain.OnboardingLink{URL: link.URL, ExpiresAt: link.ExpiresAt}, nil
}

func (s *Service) CreateDashboardLoginLink(ctx context.Context, ref domain.AccountRef) (string, error) {
	if err := s.requireOwnedAccount(ctx, ref); err != nil {
		return "", err
	}

	resolved, err := s.resolveAccountID(ctx, ref)
	if err != nil {
		return "", err
	}
	return s.stripe.CreateLoginLink(ctx, resolved)
}

func (s *Service) CheckOnboarded(ctx context.Context, ref domain.AccountRef) (domain.OnboardingStatus, error) {
	accountID, err := s.resolveAccountID(ctx, ref)
	if err != nil {
		return domain.OnboardingStatus{}, err
	}

	account, err := s.stripe.GetAccount(ctx, accountID)
	if err != nil {
		// A lookup failure is retryable; it never reads as "not onboarded".
		return domain.OnboardingStatus{}, err
	}

	onboarded := account.DetailsSubmitted &&
		len(account.CurrentlyDue) == 0 &&
		len(account.FutureCurrentlyDue) == 0 &&
		account.ChargesEnabled &&
		account.PayoutsEnabled &&
		account.DisabledReason == ""

	return domain.OnboardingStatus{AccountID: accountID, Onboarded: onboarded}, nil
}

func (s *Service) CompleteOnboarding(ctx context.Context, ref domain.AccountRef) (domain.OnboardingStatus, error) {
	if err := s.requireOwnedAccount(ctx, ref); err != nil {
		return domain.OnboardingStatus{}, err
	}

	status, err := s.CheckOnboarded(ctx, ref)
	if err != nil {
		return domain.OnboardingStatus{}, err
	}

	uid := strings.TrimSpace(ref.UID)
	if uid == "" {
		return status, nil
	}
	if err := s.users.SetStripeOnboarded(ctx, s.db, uid, status.Onboarded); err != nil {
		return domain.OnboardingStatus{}, err
	}
	s.log.Info("onboarding status persisted",
		zap.String("uid", uid),
		zap.String("account_id", status.AccountID),
		zap.Bool("onboarded", status.Onboarded))
	return status, nil
}

// requireOwnedAccount rejects a request that names both a uid and an account
// id that disagree with the stored profile, so a caller cannot act on someone
// else's account.
func (s *Service) requireOwnedAccount(ctx context.Context, ref domain.AccountRef) error {
	uid := strings.TrimSpace(ref.UID)
	accountID := strings.TrimSpace(ref.AccountID)
	if uid == "" || accountID == "" {
		return nil
	}

	user, err := s.users.FindByUID(ctx, s.db, uid)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.StripeAccountID != accountID {
		return domain.ErrAccountMismatch
	}
	return nil
}

// resolveAccountID prefers an explicit account id and falls back to the
// stored profile value.
func (s *Service) resolveAccountID(ctx context.Context, ref domain.AccountRef) (string, error) {
	if accountID := strings.TrimSpace(ref.AccountID); accountID != "" {
		return accountID, nil
	}
	uid := strings.TrimSpace(ref.UID)
	if uid == "" {
		return "", domain.ErrMissingIdentifier
	}
	user, err := s.users.FindByUID(ctx, s.db, uid)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}
	if user.StripeAccountID == "" {
		return "", domain.ErrNoAccount
	}
	return user.StripeAccountID, nil
}
