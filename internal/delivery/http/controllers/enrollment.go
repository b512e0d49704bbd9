package controllers

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	EnrolledCourses(ctx context.Context, userID uuid.UUID) ([]models.EnrolledCourse, error)
	MarkLessonCompleted(ctx context.Context, userID, lessonID uuid.UUID, lastPosition *float64) (*models.Progress, error)
	UpdateLessonProgress(ctx context.Context, userID, lessonID uuid.UUID, position float64) (*models.Progress, error)
	CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error)
	NextLesson(ctx context.Context, userID, courseID uuid.UUID) (*models.Lesson, error)
}

type EnrollmentHandler struct {
	EnrollmentService EnrollmentService
	log               logger.Log
}

func NewEnrollmentHandler(l logger.Log, enrollment EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		EnrollmentService: enrollment,
		log:               l,
	}
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrCourseNotFound), errors.Is(err, app_errors.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrCourseNotPublished), errors.Is(err, app_errors.ErrNotEnrolled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.log.ErrorErr("enrollment handler error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type enrollRequest struct {
	CourseID string `json:"course_id"`
}

// Enroll enrolls the caller in a course. Repeat enrollment is not an error:
// the existing state is acknowledged with 200 instead of 201.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var input enrollRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.CourseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id is required"})
		return
	}
	courseID, err := uuid.Parse(input.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course_id"})
		return
	}

	enrollment, err := h.EnrollmentService.Enroll(c.Request.Context(), userID, courseID)
	if err != nil {
		if errors.Is(err, app_errors.ErrAlreadyEnrolled) {
			c.JSON(http.StatusOK, gin.H{"message": "already enrolled"})
			return
		}
		h.handleEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) IsEnrolled(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	enrolled, err := h.EnrollmentService.IsEnrolled(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrolled": enrolled})
}

func (h *EnrollmentHandler) MyCourses(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courses, err := h.EnrollmentService.EnrolledCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

type completeLessonRequest struct {
	LastPosition *float64 `json:"last_position"`
}

func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	lessonID, ok := pathID(c, "lesson_id")
	if !ok {
		return
	}
	// The body is optional: a bare call completes without a playhead.
	var input completeLessonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	progress, err := h.EnrollmentService.MarkLessonCompleted(c.Request.Context(), userID, lessonID, input.LastPosition)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

type positionRequest struct {
	Position float64 `json:"position" binding:"required"`
}

func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	lessonID, ok := pathID(c, "lesson_id")
	if !ok {
		return
	}
	var input positionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	progress, err := h.EnrollmentService.UpdateLessonProgress(c.Request.Context(), userID, lessonID, input.Position)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *EnrollmentHandler) CourseProgress(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	progress, err := h.EnrollmentService.CourseProgress(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *EnrollmentHandler) NextLesson(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	lesson, err := h.EnrollmentService.NextLesson(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	if lesson == nil {
		c.JSON(http.StatusOK, gin.H{"lesson": nil, "completed": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": lesson, "completed": false})
}
