package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	purchasedomain "github.com/rjvb7424/learn-it-now/internal/purchase/domain"
)

type enrollFreeRequest struct {
	UID string `json:"uid"`
}

func (s *Server) EnrollFree(c *gin.Context) {
	var req enrollFreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, strings.TrimSpace(req.UID)); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.purchaseSvc.EnrollFree(c.Request.Context(), req.UID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListPurchases(c *gin.Context) {
	resp, err := s.purchaseSvc.ListByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": resp})
}

func (s *Server) GetPurchase(c *gin.Context) {
	resp, err := s.purchaseSvc.Get(c.Request.Context(), c.Param("uid"), c.Param("courseId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type setProgressRequest struct {
	LessonIndex int `json:"lessonIndex"`
}

func (s *Server) SetProgress(c *gin.Context) {
	uid := strings.TrimSpace(c.Param("uid"))

	var req setProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, uid); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.purchaseSvc.SetProgress(c.Request.Context(), purchasedomain.SetProgressRequest{
		UID:         uid,
		CourseID:    c.Param("courseId"),
		LessonIndex: req.LessonIndex,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
