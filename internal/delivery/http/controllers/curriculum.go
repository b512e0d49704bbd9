package controllers

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CurriculumService interface {
	CreateModule(ctx context.Context, module models.Module, userID uuid.UUID) (*models.Module, error)
	UpdateModule(ctx context.Context, moduleID uuid.UUID, upd models.ModuleUpdate, userID uuid.UUID) (*models.Module, error)
	DeleteModule(ctx context.Context, moduleID uuid.UUID, userID uuid.UUID) error
	ModulesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.Module, error)
	ReorderModules(ctx context.Context, courseID uuid.UUID, changes []models.OrderChange, userID uuid.UUID) error
	CreateLesson(ctx context.Context, lesson models.Lesson, userID uuid.UUID) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, lessonID uuid.UUID, upd models.LessonUpdate, userID uuid.UUID) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, lessonID uuid.UUID, userID uuid.UUID) error
	LessonsByModule(ctx context.Context, moduleID, userID uuid.UUID) ([]models.Lesson, error)
	ReorderLessons(ctx context.Context, moduleID uuid.UUID, changes []models.OrderChange, userID uuid.UUID) error
	UploadLessonVideo(ctx context.Context, lessonID uuid.UUID, filename string, file io.Reader, size int64, contentType string, userID uuid.UUID) (*models.Lesson, error)
}

type CurriculumHandler struct {
	CurriculumService CurriculumService
	log               logger.Log
}

func NewCurriculumHandler(l logger.Log, curriculum CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{
		CurriculumService: curriculum,
		log:               l,
	}
}

func (h *CurriculumHandler) handleCurriculumError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app_errors.ErrCourseNotFound),
		errors.Is(err, app_errors.ErrModuleNotFound),
		errors.Is(err, app_errors.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotCourseOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrFileSize), errors.Is(err, app_errors.ErrLessonType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.ErrorErr("curriculum handler error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

type createModuleRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (h *CurriculumHandler) CreateModule(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var input createModuleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	module, err := h.CurriculumService.CreateModule(c.Request.Context(), models.Module{
		CourseID:    courseID,
		Title:       input.Title,
		Description: input.Description,
	}, userID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusCreated, module)
}

func (h *CurriculumHandler) UpdateModule(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	moduleID, ok := pathID(c, "module_id")
	if !ok {
		return
	}
	var input models.ModuleUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	module, err := h.CurriculumService.UpdateModule(c.Request.Context(), moduleID, input, userID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

func (h *CurriculumHandler) DeleteModule(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	moduleID, ok := pathID(c, "module_id")
	if !ok {
		return
	}
	if err := h.CurriculumService.DeleteModule(c.Request.Context(), moduleID, userID); err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CurriculumHandler) ListModules(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	modules, err := h.CurriculumService.ModulesByCourse(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

type reorderRequest struct {
	Changes []models.OrderChange `json:"changes" binding:"required"`
}

func (h *CurriculumHandler) ReorderModules(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	var input reorderRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.CurriculumService.ReorderModules(c.Request.Context(), courseID, input.Changes, userID); err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

type createLessonRequest struct {
	Title   string  `json:"title" binding:"required"`
	Type    string  `json:"type"`
	Content *string `json:"content"`
}

func (h *CurriculumHandler) CreateLesson(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	moduleID, ok := pathID(c, "module_id")
	if !ok {
		return
	}
	var input createLessonRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lesson, err := h.CurriculumService.CreateLesson(c.Request.Context(), models.Lesson{
		ModuleID: moduleID,
		Title:    input.Title,
		Type:     input.Type,
		Content:  input.Content,
	}, userID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *CurriculumHandler) UpdateLesson(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	lessonID, ok := pathID(c, "lesson_id")
	if !ok {
		return
	}
	var input models.LessonUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lesson, err := h.CurriculumService.UpdateLesson(c.Request.Context(), lessonID, input, userID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *CurriculumHandler) DeleteLesson(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	lessonID, ok := pathID(c, "lesson_id")
	if !ok {
		return
	}
	if err := h.CurriculumService.DeleteLesson(c.Request.Context(), lessonID, userID); err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CurriculumHandler) ListLessons(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	moduleID, ok := pathID(c, "module_id")
	if !ok {
		return
	}
	lessons, err := h.CurriculumService.LessonsByModule(c.Request.Context(), moduleID, userID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

func (h *CurriculumHandler) ReorderLessons(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	moduleID, ok := pathID(c, "module_id")
	if !ok {
		return
	}
	var input reorderRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.CurriculumService.ReorderLessons(c.Request.Context(), moduleID, input.Changes, userID); err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CurriculumHandler) UploadVideo(c *gin.Context) {
	userID, ok := clientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	lessonID, ok := pathID(c, "lesson_id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.log.ErrorErr("UploadVideo: failed to open multipart file", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	lesson, err := h.CurriculumService.UploadLessonVideo(c.Request.Context(), lessonID,
		fileHeader.Filename, file, fileHeader.Size, contentType, userID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}
