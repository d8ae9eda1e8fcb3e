package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rjvb7424/learn-it-now/internal/config"
	"github.com/rjvb7424/learn-it-now/internal/payout/domain"
	"github.com/rjvb7424/learn-it-now/internal/stripeconnect"
	userdomain "github.com/rjvb7424/learn-it-now/internal/user/domain"
	userrepo "github.com/rjvb7424/learn-it-now/internal/user/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeStripe records calls and serves canned responses.
type fakeStripe struct {
	stripeconnect.Client

	created        int
	updated        int
	account        stripeconnect.Account
	accountErr     error
	lastLinkParams stripeconnect.AccountLinkParams
	loginLinks     int
}

func (f *fakeStripe) CreateAccount(ctx context.Context, params stripeconnect.CreateAccountParams) (*stripeconnect.Account, error) {
	f.created++
	return &stripeconnect.Account{ID: "acct_new"}, nil
}

func (f *fakeStripe) UpdateAccount(ctx context.Context, accountID string, params stripeconnect.UpdateAccountParams) (*stripeconnect.Account, error) {
	f.updated++
	return &stripeconnect.Account{ID: accountID}, nil
}

func (f *fakeStripe) GetAccount(ctx context.Context, accountID string) (*stripeconnect.Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	acct := f.account
	acct.ID = accountID
	return &acct, nil
}

func (f *fakeStripe) CreateAccountLink(ctx context.Context, params stripeconnect.AccountLinkParams) (*stripeconnect.AccountLink, error) {
	f.lastLinkParams = params
	return &stripeconnect.AccountLink{
		URL:       "https://connect.stripe.test/setup/" + params.AccountID,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil
}

func (f *fakeStripe) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	f.loginLinks++
	return "https://connect.stripe.test/express/" + accountID, nil
}

func completeAccount() stripeconnect.Account {
	return stripeconnect.Account{
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
		DetailsSubmitted: true,
	}
}

func setupPayout(t *testing.T, stripe *fakeStripe) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userdomain.User{}))

	svc := New(Params{
		DB:  db,
		Log: zap.NewNop(),
		Cfg: config.Config{
			PublicOrigin: "http://localhost:5173",
			PlatformURL:  "https://learnitnow.test",
			PlatformMCC:  "8299",
		},
		Users:  userrepo.Provide(),
		Stripe: stripe,
	})
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, uid, accountID string) {
	t.Helper()
	require.NoError(t, db.Create(&userdomain.User{
		UID:             uid,
		DisplayName:     "Ada Lovelace",
		Email:           "ada@example.com",
		StripeAccountID: accountID,
	}).Error)
}

func TestCreateOrUpdatePayeeAccount(t *testing.T) {
	stripe := &fakeStripe{}
	svc, db := setupPayout(t, stripe)
	seedUser(t, db, "creator-1", "")
	ctx := context.Background()

	first, err := svc.CreateOrUpdatePayeeAccount(ctx, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, "acct_new", first)
	assert.Equal(t, 1, stripe.created)

	// The second call must refresh the existing account, never create a
	// second one.
	second, err := svc.CreateOrUpdatePayeeAccount(ctx, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, stripe.created)
	assert.Equal(t, 1, stripe.updated)

	var user userdomain.User
	require.NoError(t, db.Where("uid = ?", "creator-1").First(&user).Error)
	assert.Equal(t, "acct_new", user.StripeAccountID)
	assert.False(t, user.StripeOnboarded)
}

func TestCreateOrUpdatePayeeAccount_Errors(t *testing.T) {
	svc, _ := setupPayout(t, &fakeStripe{})
	ctx := context.Background()

	_, err := svc.CreateOrUpdatePayeeAccount(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingIdentifier)

	_, err = svc.CreateOrUpdatePayeeAccount(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateOnboardingLink(t *testing.T) {
	stripe := &fakeStripe{}
	svc, db := setupPayout(t, stripe)
	seedUser(t, db, "creator-1", "acct_123")

	link, err := svc.CreateOnboardingLink(context.Background(), domain.OnboardingLinkRequest{
		AccountRef: domain.AccountRef{UID: "creator-1"},
		Origin:     "http://example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, link.URL)
	assert.Equal(t, "acct_123", stripe.lastLinkParams.AccountID)
	assert.Equal(t, "https://example.com/return/acct_123", stripe.lastLinkParams.ReturnURL)
	assert.Equal(t, "https://example.com/refresh/acct_123", stripe.lastLinkParams.RefreshURL)
}

func TestCreateOnboardingLink_NoIdentifiers(t *testing.T) {
	svc, _ := setupPayout(t, &fakeStripe{})

	_, err := svc.CreateOnboardingLink(context.Background(), domain.OnboardingLinkRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingIdentifier)
}

func TestCreateDashboardLoginLink(t *testing.T) {
	stripe := &fakeStripe{}
	svc, db := setupPayout(t, stripe)
	seedUser(t, db, "creator-1", "acct_123")
	ctx := context.Background()

	url, err := svc.CreateDashboardLoginLink(ctx, domain.AccountRef{UID: "creator-1"})
	require.NoError(t, err)
	assert.Contains(t, url, "acct_123")

	// Supplying an account id that is not the caller's own is rejected.
	_, err = svc.CreateDashboardLoginLink(ctx, domain.AccountRef{UID: "creator-1", AccountID: "acct_other"})
	assert.ErrorIs(t, err, domain.ErrAccountMismatch)

	seedUser(t, db, "creator-2", "")
	_, err = svc.CreateDashboardLoginLink(ctx, domain.AccountRef{UID: "creator-2"})
	assert.ErrorIs(t, err, domain.ErrNoAccount)
}

func TestCheckOnboarded(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*stripeconnect.Account)
		expects bool
	}{
		{"all requirements met", func(a *stripeconnect.Account) {}, true},
		{"details not submitted", func(a *stripeconnect.Account) { a.DetailsSubmitted = false }, false},
		{"requirements currently due", func(a *stripeconnect.Account) { a.CurrentlyDue = []string{"individual.dob"} }, false},
		{"future requirements due", func(a *stripeconnect.Account) { a.FutureCurrentlyDue = []string{"individual.id_number"} }, false},
		{"charges disabled", func(a *stripeconnect.Account) { a.ChargesEnabled = false }, false},
		{"payouts disabled", func(a *stripeconnect.Account) { a.PayoutsEnabled = false }, false},
		{"account disabled", func(a *stripeconnect.Account) { a.DisabledReason = "requirements.past_due" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := completeAccount()
			tt.mutate(&account)
			svc, _ := setupPayout(t, &fakeStripe{account: account})

			status, err := svc.CheckOnboarded(context.Background(), domain.AccountRef{AccountID: "acct_123"})
			require.NoError(t, err)
			assert.Equal(t, "acct_123", status.AccountID)
			assert.Equal(t, tt.expects, status.Onboarded)
		})
	}
}

func TestCheckOnboarded_LookupFailureIsNotFalse(t *testing.T) {
	svc, _ := setupPayout(t, &fakeStripe{accountErr: errors.New("stripe get_account: boom")})

	_, err := svc.CheckOnboarded(context.Background(), domain.AccountRef{AccountID: "acct_123"})
	assert.Error(t, err)
}

func TestCompleteOnboarding_PersistsVerdict(t *testing.T) {
	svc, db := setupPayout(t, &fakeStripe{account: completeAccount()})
	seedUser(t, db, "creator-1", "acct_123")

	status, err := svc.CompleteOnboarding(context.Background(), domain.AccountRef{UID: "creator-1"})
	require.NoError(t, err)
	assert.True(t, status.Onboarded)

	var user userdomain.User
	require.NoError(t, db.Where("uid = ?", "creator-1").First(&user).Error)
	assert.True(t, user.StripeOnboarded)
}

func TestCompleteOnboarding_ForeignAccountRejected(t *testing.T) {
	// The stripe lookup would report this account as fully onboarded, but it
	// is not the caller's stored account.
	svc, db := setupPayout(t, &fakeStripe{account: completeAccount()})
	seedUser(t, db, "creator-1", "acct_123")

	_, err := svc.CompleteOnboarding(context.Background(), domain.AccountRef{UID: "creator-1", AccountID: "acct_other"})
	assert.ErrorIs(t, err, domain.ErrAccountMismatch)

	var user userdomain.User
	require.NoError(t, db.Where("uid = ?", "creator-1").First(&user).Error)
	assert.False(t, user.StripeOnboarded)
}

func TestCompleteOnboarding_IncompleteAccountStaysFalse(t *testing.T) {
	account := completeAccount()
	account.CurrentlyDue = []string{"individual.dob"}
	svc, db := setupPayout(t, &fakeStripe{account: account})
	seedUser(t, db, "creator-1", "acct_123")

	status, err := svc.CompleteOnboarding(context.Background(), domain.AccountRef{UID: "creator-1"})
	require.NoError(t, err)
	assert.False(t, status.Onboarded)

	var user userdomain.User
	require.NoError(t, db.Where("uid = ?", "creator-1").First(&user).Error)
	assert.False(t, user.StripeOnboarded)
}
