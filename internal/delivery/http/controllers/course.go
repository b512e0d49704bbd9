package controllers

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultSearchSize = 20

type CourseService interface {
	CreateCourse(ctx context.Context, title, description string, creatorID uuid.UUID) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate, userID uuid.UUID) (*models.Course, error)
	TogglePublished(ctx context.Context, id uuid.UUID, isPublished bool, userID uuid.UUID) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	PublishedCourses(ctx context.Context) ([]models.Course, error)
	MyCourses(ctx context.Context, creatorID uuid.UUID) ([]models.Course, error)
	AccessibleCourses(ctx context.Context, userID uuid.UUID) ([]models.Course, error)
	CourseWithContent(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.CourseContent, error)
	SearchCourses(ctx context.Context, query string, size int, userID uuid.UUID) ([]models.Course, error)
	UploadCoverImage(ctx context.Context, courseID uuid.UUID, filename string, file io.Reader, size int64, contentType string, userID uuid.UUID) (*models.Course, error)
}

type CourseHandler struct {
	CourseService CourseService
	log           logger.Log
}

func NewCourseHandler(l logger.Log, course CourseService) *CourseHandler {
	return &CourseHandler{
		CourseService: course,
		log:           l,
	}
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotCourseOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrFileSize), errors.Is(err, app_errors.ErrNotImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.ErrorErr("course handler error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type createCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var input createCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course, err := h.CourseService.CreateCourse(c.Request.Context(), input.Title, input.Description, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
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
	course, err := h.CourseService.UpdateCourse(c.Request.Context(), courseID, input, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

type publishRequest struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}

func (h *CourseHandler) Publish(c *gin.Context) {
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
	var input publishRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course, err := h.CourseService.TogglePublished(c.Request.Context(), courseID, *input.IsPublished, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
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
	if err := h.CourseService.DeleteCourse(c.Request.Context(), courseID, userID); err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CourseHandler) ListPublished(c *gin.Context) {
	courses, err := h.CourseService.PublishedCourses(c.Request.Context())
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) ListMine(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courses, err := h.CourseService.MyCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) ListAccessible(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courses, err := h.CourseService.AccessibleCourses(c.Request.Context(), userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) Content(c *gin.Context) {
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
	content, err := h.CourseService.CourseWithContent(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (h *CourseHandler) Search(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	size := defaultSearchSize
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
			return
		}
		size = parsed
	}
	courses, err := h.CourseService.SearchCourses(c.Request.Context(), query, size, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) UploadCover(c *gin.Context) {
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

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cover file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.log.ErrorErr("UploadCover: failed to open multipart file", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	course, err := h.CourseService.UploadCoverImage(c.Request.Context(), courseID,
		fileHeader.Filename, file, fileHeader.Size, contentType, userID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
