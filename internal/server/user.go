package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	userdomain "github.com/rjvb7424/learn-it-now/internal/user/domain"
)

type upsertUserRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl"`
}

func (s *Server) UpsertUser(c *gin.Context) {
	uid := strings.TrimSpace(c.Param("uid"))

	var req upsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, uid); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.userSvc.Upsert(c.Request.Context(), userdomain.UpsertUserRequest{
		UID:         uid,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetUser(c *gin.Context) {
	resp, err := s.userSvc.GetByUID(c.Request.Context(), c.Param("uid"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
