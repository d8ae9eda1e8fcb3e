package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	payoutdomain "github.com/rjvb7424/learn-it-now/internal/payout/domain"
)

type accountRefRequest struct {
	UID       string `json:"uid"`
	AccountID string `json:"accountId"`
}

func (r accountRefRequest) ref() payoutdomain.AccountRef {
	return payoutdomain.AccountRef{
		UID:       strings.TrimSpace(r.UID),
		AccountID: strings.TrimSpace(r.AccountID),
	}
}

func (s *Server) CreatePayeeAccount(c *gin.Context) {
	var req accountRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, strings.TrimSpace(req.UID)); err != nil {
		AbortWithError(c, err)
		return
	}

	accountID, err := s.payoutSvc.CreateOrUpdatePayeeAccount(c.Request.Context(), req.UID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accountId": accountID})
}

func (s *Server) CreateOnboardingLink(c *gin.Context) {
	var req accountRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	link, err := s.payoutSvc.CreateOnboardingLink(c.Request.Context(), payoutdomain.OnboardingLinkRequest{
		AccountRef: req.ref(),
		Origin:     c.GetHeader("Origin"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (s *Server) CreateDashboardLoginLink(c *gin.Context) {
	var req accountRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.UID != "" {
		if err := s.verifyIdentity(c, strings.TrimSpace(req.UID)); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	url, err := s.payoutSvc.CreateDashboardLoginLink(c.Request.Context(), req.ref())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *Server) CheckOnboardingStatus(c *gin.Context) {
	var req accountRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	status, err := s.payoutSvc.CheckOnboarded(c.Request.Context(), req.ref())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) CompleteOnboarding(c *gin.Context) {
	var req accountRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, strings.TrimSpace(req.UID)); err != nil {
		AbortWithError(c, err)
		return
	}

	status, err := s.payoutSvc.CompleteOnboarding(c.Request.Context(), req.ref())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
