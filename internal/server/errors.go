package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/rjvb7424/learn-it-now/internal/checkout/domain"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
	payoutdomain "github.com/rjvb7424/learn-it-now/internal/payout/domain"
	purchasedomain "github.com/rjvb7424/learn-it-now/internal/purchase/domain"
	userdomain "github.com/rjvb7424/learn-it-now/internal/user/domain"
)

var (
	ErrInvalidRequest = errors.New("invalid request body")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRateLimited    = errors.New("too many requests")
)

type errorResponse struct {
	Error string `json:"error"`
}

// ErrorHandlingMiddleware converts errors collected via c.Error into the
// uniform {"error": string} response body.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	for target, m := range errorMessages {
		if errors.Is(err, target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

type mapping struct {
	status  int
	message string
}

var errorMessages = map[error]mapping{
	ErrInvalidRequest: {http.StatusBadRequest, "invalid request body"},
	ErrUnauthorized:   {http.StatusUnauthorized, "unauthorized"},
	ErrRateLimited:    {http.StatusTooManyRequests, "too many requests"},

	userdomain.ErrInvalidUID: {http.StatusBadRequest, "missing or invalid uid"},
	userdomain.ErrNotFound:   {http.StatusNotFound, "user not found"},

	coursedomain.ErrInvalidID:      {http.StatusBadRequest, "missing or invalid course id"},
	coursedomain.ErrInvalidTitle:   {http.StatusBadRequest, "course title is required"},
	coursedomain.ErrInvalidPrice:   {http.StatusBadRequest, "course price is invalid"},
	coursedomain.ErrInvalidCreator: {http.StatusBadRequest, "creator uid is required"},
	coursedomain.ErrNotFound:       {http.StatusNotFound, "course not found"},
	coursedomain.ErrNotOwner:       {http.StatusForbidden, "only the course creator may do that"},

	purchasedomain.ErrInvalidUID:    {http.StatusBadRequest, "missing or invalid uid"},
	purchasedomain.ErrInvalidCourse: {http.StatusBadRequest, "missing or invalid course id"},
	purchasedomain.ErrNotFound:      {http.StatusNotFound, "purchase not found"},
	purchasedomain.ErrCourseNotFree: {http.StatusBadRequest, "course is not free; use checkout"},

	payoutdomain.ErrMissingIdentifier: {http.StatusBadRequest, "uid or accountId is required"},
	payoutdomain.ErrUserNotFound:      {http.StatusNotFound, "user not found"},
	payoutdomain.ErrNoAccount:         {http.StatusNotFound, "no payout account for this user"},
	payoutdomain.ErrAccountMismatch:   {http.StatusForbidden, "account does not belong to this user"},

	checkoutdomain.ErrInvalidUID:          {http.StatusBadRequest, "missing or invalid uid"},
	checkoutdomain.ErrInvalidSessionID:    {http.StatusBadRequest, "missing or invalid session id"},
	checkoutdomain.ErrCourseMisconfigured: {http.StatusBadRequest, "course has no creator"},
	checkoutdomain.ErrCourseIsFree:        {http.StatusBadRequest, "course is free; no checkout needed"},
	checkoutdomain.ErrCreatorNotOnboarded: {http.StatusBadRequest, "course creator has not completed payout onboarding"},
	checkoutdomain.ErrPriceTooLow:         {http.StatusBadRequest, "course price is below the minimum"},
	checkoutdomain.ErrInvalidSession:      {http.StatusBadRequest, "checkout session is not valid for this purchase"},
	checkoutdomain.ErrMissingPayment:      {http.StatusBadRequest, "checkout session has no payment attached"},
	checkoutdomain.ErrPaymentNotCompleted: {http.StatusBadRequest, "payment has not been completed"},
	checkoutdomain.ErrIdentityMismatch:    {http.StatusForbidden, "session belongs to a different user"},
}

// classifyErrorForLog labels collected errors for the request log line.
func classifyErrorForLog(err error) (string, string) {
	status, _ := mapError(err)
	switch {
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return "auth_error", err.Error()
	case status == http.StatusNotFound:
		return "not_found", err.Error()
	case status >= http.StatusInternalServerError:
		return "internal_error", err.Error()
	default:
		return "validation_error", err.Error()
	}
}
