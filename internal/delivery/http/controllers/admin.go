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

type AdminService interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) bool
	AllCourses(ctx context.Context, callerID uuid.UUID) ([]models.CourseSummary, error)
	PlatformStats(ctx context.Context, callerID uuid.UUID) (*models.PlatformStats, error)
	CourseWithEnrollees(ctx context.Context, courseID, callerID uuid.UUID) (*models.Course, []models.Enrollee, error)
	UpdateAnyCourse(ctx context.Context, courseID uuid.UUID, upd models.CourseUpdate, callerID uuid.UUID) (*models.Course, error)
}

type AdminHandler struct {
	AdminService AdminService
	log          logger.Log
}

func NewAdminHandler(l logger.Log, admin AdminService) *AdminHandler {
	return &AdminHandler{
		AdminService: admin,
		log:          l,
	}
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrAdminRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.ErrorErr("admin handler error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *AdminHandler) ListAllCourses(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courses, err := h.AdminService.AllCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	stats, err := h.AdminService.PlatformStats(c.Request.Context(), userID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) CourseDetails(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	course, enrollees, err := h.AdminService.CourseWithEnrollees(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course, "enrollees": enrollees})
}

func (h *AdminHandler) UpdateCourse(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}
	var input models.CourseUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course, err := h.AdminService.UpdateAnyCourse(c.Request.Context(), courseID, input, userID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
