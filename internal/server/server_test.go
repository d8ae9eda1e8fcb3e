package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	checkoutdomain "github.com/rjvb7424/learn-it-now/internal/checkout/domain"
	"github.com/rjvb7424/learn-it-now/internal/config"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
	payoutdomain "github.com/rjvb7424/learn-it-now/internal/payout/domain"
	purchasedomain "github.com/rjvb7424/learn-it-now/internal/purchase/domain"
	userdomain "github.com/rjvb7424/learn-it-now/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserService struct {
	upserts int
	err     error
}

func (f *fakeUserService) Upsert(ctx context.Context, req userdomain.UpsertUserRequest) (userdomain.User, error) {
	f.upserts++
	if f.err != nil {
		return userdomain.User{}, f.err
	}
	return userdomain.User{UID: req.UID, DisplayName: req.DisplayName}, nil
}

func (f *fakeUserService) GetByUID(ctx context.Context, uid string) (userdomain.User, error) {
	if f.err != nil {
		return userdomain.User{}, f.err
	}
	return userdomain.User{UID: uid}, nil
}

type fakeCourseService struct {
	err error
}

func (f *fakeCourseService) Create(ctx context.Context, req coursedomain.CreateCourseRequest) (coursedomain.Course, error) {
	if f.err != nil {
		return coursedomain.Course{}, f.err
	}
	return coursedomain.Course{Title: req.Title, CreatorUID: req.CreatorUID}, nil
}

func (f *fakeCourseService) Update(ctx context.Context, req coursedomain.UpdateCourseRequest) (coursedomain.Course, error) {
	return coursedomain.Course{}, f.err
}

func (f *fakeCourseService) List(ctx context.Context) ([]coursedomain.Course, error) {
	return []coursedomain.Course{{Title: "Go"}}, f.err
}

func (f *fakeCourseService) GetByID(ctx context.Context, id string) (coursedomain.Course, error) {
	if f.err != nil {
		return coursedomain.Course{}, f.err
	}
	return coursedomain.Course{Title: "Go"}, nil
}

type fakePurchaseService struct {
	grants int
	err    error
}

func (f *fakePurchaseService) Grant(ctx context.Context, uid, courseID string) (purchasedomain.Purchase, error) {
	f.grants++
	return purchasedomain.Purchase{UID: uid}, f.err
}

func (f *fakePurchaseService) EnrollFree(ctx context.Context, uid, courseID string) (purchasedomain.Purchase, error) {
	if f.err != nil {
		return purchasedomain.Purchase{}, f.err
	}
	return purchasedomain.Purchase{UID: uid, PurchasedAt: time.Now()}, nil
}

func (f *fakePurchaseService) Get(ctx context.Context, uid, courseID string) (purchasedomain.Purchase, error) {
	return purchasedomain.Purchase{UID: uid}, f.err
}

func (f *fakePurchaseService) ListByUser(ctx context.Context, uid string) ([]purchasedomain.Purchase, error) {
	return nil, f.err
}

func (f *fakePurchaseService) SetProgress(ctx context.Context, req purchasedomain.SetProgressRequest) (purchasedomain.Purchase, error) {
	return purchasedomain.Purchase{UID: req.UID, CurrentLessonIndex: req.LessonIndex}, f.err
}

type fakePayoutService struct {
	err error
}

func (f *fakePayoutService) CreateOrUpdatePayeeAccount(ctx context.Context, uid string) (string, error) {
	return "acct_test", f.err
}

func (f *fakePayoutService) CreateOnboardingLink(ctx context.Context, req payoutdomain.OnboardingLinkRequest) (payoutdomain.OnboardingLink, error) {
	if f.err != nil {
		return payoutdomain.OnboardingLink{}, f.err
	}
	return payoutdomain.OnboardingLink{URL: "https://connect.stripe.test/setup", ExpiresAt: time.Now()}, nil
}

func (f *fakePayoutService) CreateDashboardLoginLink(ctx context.Context, ref payoutdomain.AccountRef) (string, error) {
	return "https://connect.stripe.test/express", f.err
}

func (f *fakePayoutService) CheckOnboarded(ctx context.Context, ref payoutdomain.AccountRef) (payoutdomain.OnboardingStatus, error) {
	if f.err != nil {
		return payoutdomain.OnboardingStatus{}, f.err
	}
	return payoutdomain.OnboardingStatus{AccountID: "acct_test", Onboarded: true}, nil
}

func (f *fakePayoutService) CompleteOnboarding(ctx context.Context, ref payoutdomain.AccountRef) (payoutdomain.OnboardingStatus, error) {
	return f.CheckOnboarded(ctx, ref)
}

type fakeCheckoutService struct {
	lastStart checkoutdomain.StartCheckoutRequest
	err       error
}

func (f *fakeCheckoutService) StartCheckout(ctx context.Context, req checkoutdomain.StartCheckoutRequest) (checkoutdomain.StartCheckoutResponse, error) {
	f.lastStart = req
	if f.err != nil {
		return checkoutdomain.StartCheckoutResponse{}, f.err
	}
	return checkoutdomain.StartCheckoutResponse{
		URL:         "https://checkout.stripe.test/cs_1",
		ID:          "cs_1",
		TotalAmount: 1300,
	}, nil
}

func (f *fakeCheckoutService) FinalizeCheckout(ctx context.Context, req checkoutdomain.FinalizeRequest) (checkoutdomain.FinalizeResponse, error) {
	if f.err != nil {
		return checkoutdomain.FinalizeResponse{}, f.err
	}
	return checkoutdomain.FinalizeResponse{OK: true, CourseID: "42"}, nil
}

type fixture struct {
	engine   *gin.Engine
	users    *fakeUserService
	courses  *fakeCourseService
	buys     *fakePurchaseService
	payouts  *fakePayoutService
	checkout *fakeCheckoutService
}

func newTestServer(t *testing.T, cfg config.Config) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		engine:   gin.New(),
		users:    &fakeUserService{},
		courses:  &fakeCourseService{},
		buys:     &fakePurchaseService{},
		payouts:  &fakePayoutService{},
		checkout: &fakeCheckoutService{},
	}
	f.engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:         f.engine,
		Cfg:         cfg,
		Log:         zap.NewNop(),
		UserSvc:     f.users,
		CourseSvc:   f.courses,
		PurchaseSvc: f.buys,
		PayoutSvc:   f.payouts,
		CheckoutSvc: f.checkout,
	})
	return f
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestStartCheckoutHandler(t *testing.T) {
	f := newTestServer(t, config.Config{})

	w := doJSON(t, f.engine, http.MethodPost, "/api/checkout/start",
		gin.H{"uid": "buyer-1", "courseId": "42"},
		map[string]string{"Origin": "http://localhost:5173"})

	require.Equal(t, http.StatusOK, w.Code)
	var resp checkoutdomain.StartCheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1300), resp.TotalAmount)
	assert.Equal(t, "buyer-1", f.checkout.lastStart.UID)
	assert.Equal(t, "http://localhost:5173", f.checkout.lastStart.Origin)
}

func TestErrorShape(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"price too low", checkoutdomain.ErrPriceTooLow, http.StatusBadRequest},
		{"course not found", coursedomain.ErrNotFound, http.StatusNotFound},
		{"identity mismatch", checkoutdomain.ErrIdentityMismatch, http.StatusForbidden},
		{"processor failure", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestServer(t, config.Config{})
			f.checkout.err = tt.err

			w := doJSON(t, f.engine, http.MethodPost, "/api/checkout/start",
				gin.H{"uid": "buyer-1", "courseId": "42"}, nil)

			assert.Equal(t, tt.status, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
			assert.Len(t, resp, 1)
		})
	}
}

func TestFinalizeCheckoutHandler(t *testing.T) {
	f := newTestServer(t, config.Config{})

	w := doJSON(t, f.engine, http.MethodPost, "/api/checkout/finalize",
		gin.H{"uid": "buyer-1", "sessionId": "cs_1"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp checkoutdomain.FinalizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "42", resp.CourseID)
}

func TestInvalidBodyRejected(t *testing.T) {
	f := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/start", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayoutHandlers(t *testing.T) {
	f := newTestServer(t, config.Config{})

	w := doJSON(t, f.engine, http.MethodPost, "/api/payouts/account", gin.H{"uid": "creator-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "acct_test")

	w = doJSON(t, f.engine, http.MethodPost, "/api/payouts/onboarding/status", gin.H{"accountId": "acct_test"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status payoutdomain.OnboardingStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Onboarded)

	f.payouts.err = payoutdomain.ErrAccountMismatch
	w = doJSON(t, f.engine, http.MethodPost, "/api/payouts/dashboard-link",
		gin.H{"uid": "creator-1", "accountId": "acct_other"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpsertUserHandler(t *testing.T) {
	f := newTestServer(t, config.Config{})

	w := doJSON(t, f.engine, http.MethodPut, "/api/users/u1",
		gin.H{"displayName": "Ada Lovelace", "email": "ada@example.com"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.users.upserts)
}

func TestEnrollFreeHandler(t *testing.T) {
	f := newTestServer(t, config.Config{})

	w := doJSON(t, f.engine, http.MethodPost, "/api/courses/42/enroll", gin.H{"uid": "buyer-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	f.buys.err = purchasedomain.ErrCourseNotFree
	w = doJSON(t, f.engine, http.MethodPost, "/api/courses/42/enroll", gin.H{"uid": "buyer-1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestBearerIdentity(t *testing.T) {
	cfg := config.Config{AuthJWTSecret: "test-secret"}

	t.Run("missing token", func(t *testing.T) {
		f := newTestServer(t, cfg)
		w := doJSON(t, f.engine, http.MethodPost, "/api/checkout/start",
			gin.H{"uid": "buyer-1", "courseId": "42"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("subject mismatch", func(t *testing.T) {
		f := newTestServer(t, cfg)
		w := doJSON(t, f.engine, http.MethodPost, "/api/checkout/start",
			gin.H{"uid": "buyer-1", "courseId": "42"},
			map[string]string{"Authorization": "Bearer " + signToken(t, "test-secret", "someone-else")})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("matching subject", func(t *testing.T) {
		f := newTestServer(t, cfg)
		w := doJSON(t, f.engine, http.MethodPost, "/api/checkout/start",
			gin.H{"uid": "buyer-1", "courseId": "42"},
			map[string]string{"Authorization": "Bearer " + signToken(t, "test-secret", "buyer-1")})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
