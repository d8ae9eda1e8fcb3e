package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/rjvb7424/learn-it-now/internal/checkout/domain"
)

type startCheckoutRequest struct {
	UID      string `json:"uid"`
	CourseID string `json:"courseId"`
}

func (s *Server) StartCheckout(c *gin.Context) {
	var req startCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, strings.TrimSpace(req.UID)); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.checkoutSvc.StartCheckout(c.Request.Context(), checkoutdomain.StartCheckoutRequest{
		UID:      req.UID,
		CourseID: req.CourseID,
		Origin:   c.GetHeader("Origin"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type finalizeCheckoutRequest struct {
	UID       string `json:"uid"`
	SessionID string `json:"sessionId"`
}

func (s *Server) FinalizeCheckout(c *gin.Context) {
	var req finalizeCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, strings.TrimSpace(req.UID)); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.checkoutSvc.FinalizeCheckout(c.Request.Context(), checkoutdomain.FinalizeRequest{
		UID:       req.UID,
		SessionID: req.SessionID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
