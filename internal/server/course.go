package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	coursedomain "github.com/rjvb7424/learn-it-now/internal/course/domain"
)

type lessonRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type createCourseRequest struct {
	UID         string          `json:"uid"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	IsFree      bool            `json:"isFree"`
	Lessons     []lessonRequest `json:"lessons"`
}

type updateCourseRequest struct {
	UID         string          `json:"uid"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Price       *float64        `json:"price"`
	IsFree      *bool           `json:"isFree"`
	Lessons     []lessonRequest `json:"lessons"`
}

func (s *Server) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, strings.TrimSpace(req.UID)); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.courseSvc.Create(c.Request.Context(), coursedomain.CreateCourseRequest{
		CreatorUID:  req.UID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		IsFree:      req.IsFree,
		Lessons:     toLessonInputs(req.Lessons),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdateCourse(c *gin.Context) {
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.verifyIdentity(c, strings.TrimSpace(req.UID)); err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.courseSvc.Update(c.Request.Context(), coursedomain.UpdateCourseRequest{
		CourseID:    c.Param("id"),
		CreatorUID:  req.UID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		IsFree:      req.IsFree,
		Lessons:     toLessonInputs(req.Lessons),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListCourses(c *gin.Context) {
	resp, err := s.courseSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": resp})
}

func (s *Server) GetCourse(c *gin.Context) {
	resp, err := s.courseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func toLessonInputs(lessons []lessonRequest) []coursedomain.LessonInput {
	if lessons == nil {
		return nil
	}
	inputs := make([]coursedomain.LessonInput, 0, len(lessons))
	for _, l := range lessons {
		inputs = append(inputs, coursedomain.LessonInput{Title: l.Title, Body: l.Body})
	}
	return inputs
}
