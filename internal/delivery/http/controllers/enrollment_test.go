package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubEnrollmentService struct {
	courses  map[uuid.UUID]*models.Course
	enrolled map[uuid.UUID]bool
	insert   error
}

func (s *stubEnrollmentService) Enroll(_ context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	course, ok := s.courses[courseID]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	if !course.IsPublished {
		return nil, app_errors.ErrCourseNotPublished
	}
	if s.enrolled[courseID] {
		return nil, app_errors.ErrAlreadyEnrolled
	}
	if s.insert != nil {
		return nil, s.insert
	}
	s.enrolled[courseID] = true
	return &models.Enrollment{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}, nil
}

func (s *stubEnrollmentService) IsEnrolled(_ context.Context, _, courseID uuid.UUID) (bool, error) {
	return s.enrolled[courseID], nil
}

func (s *stubEnrollmentService) EnrolledCourses(_ context.Context, _ uuid.UUID) ([]models.EnrolledCourse, error) {
	return nil, nil
}

func (s *stubEnrollmentService) MarkLessonCompleted(_ context.Context, _, _ uuid.UUID, _ *float64) (*models.Progress, error) {
	return &models.Progress{Completed: true}, nil
}

func (s *stubEnrollmentService) UpdateLessonProgress(_ context.Context, _, _ uuid.UUID, _ float64) (*models.Progress, error) {
	return &models.Progress{}, nil
}

func (s *stubEnrollmentService) CourseProgress(_ context.Context, _, _ uuid.UUID) (*models.CourseProgress, error) {
	return &models.CourseProgress{}, nil
}

func (s *stubEnrollmentService) NextLesson(_ context.Context, _, _ uuid.UUID) (*models.Lesson, error) {
	return nil, nil
}

func setClient(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ClientIDCtx, userID)
		c.Next()
	}
}

func newEnrollRouter(t *testing.T, stub *stubEnrollmentService, authenticated bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := NewEnrollmentHandler(logger.New("local"), stub)
	if authenticated {
		r.POST("/v1/enrollments", setClient(uuid.New()), handler.Enroll)
	} else {
		r.POST("/v1/enrollments", handler.Enroll)
	}
	return r
}

func postEnroll(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/enrollments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newStub() *stubEnrollmentService {
	return &stubEnrollmentService{
		courses:  map[uuid.UUID]*models.Course{},
		enrolled: map[uuid.UUID]bool{},
	}
}

func TestEnroll_Success(t *testing.T) {
	stub := newStub()
	courseID := uuid.New()
	stub.courses[courseID] = &models.Course{ID: courseID, IsPublished: true}
	r := newEnrollRouter(t, stub, true)

	rec := postEnroll(t, r, gin.H{"course_id": courseID.String()})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, stub.enrolled[courseID])
}

func TestEnroll_Unauthenticated(t *testing.T) {
	stub := newStub()
	r := newEnrollRouter(t, stub, false)

	rec := postEnroll(t, r, gin.H{"course_id": uuid.New().String()})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnroll_MissingCourseID(t *testing.T) {
	stub := newStub()
	r := newEnrollRouter(t, stub, true)

	rec := postEnroll(t, r, gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnroll_InvalidCourseID(t *testing.T) {
	stub := newStub()
	r := newEnrollRouter(t, stub, true)

	rec := postEnroll(t, r, gin.H{"course_id": "not-a-uuid"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnroll_CourseNotFound(t *testing.T) {
	stub := newStub()
	r := newEnrollRouter(t, stub, true)

	rec := postEnroll(t, r, gin.H{"course_id": uuid.New().String()})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnroll_UnpublishedCourse(t *testing.T) {
	stub := newStub()
	courseID := uuid.New()
	stub.courses[courseID] = &models.Course{ID: courseID, IsPublished: false}
	r := newEnrollRouter(t, stub, true)

	rec := postEnroll(t, r, gin.H{"course_id": courseID.String()})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEnroll_RepeatIsAcknowledged(t *testing.T) {
	stub := newStub()
	courseID := uuid.New()
	stub.courses[courseID] = &models.Course{ID: courseID, IsPublished: true}
	r := newEnrollRouter(t, stub, true)

	first := postEnroll(t, r, gin.H{"course_id": courseID.String()})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postEnroll(t, r, gin.H{"course_id": courseID.String()})
	require.Equal(t, http.StatusOK, second.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	require.Equal(t, "already enrolled", body["message"])
}

func TestEnroll_InsertFailure(t *testing.T) {
	stub := newStub()
	courseID := uuid.New()
	stub.courses[courseID] = &models.Course{ID: courseID, IsPublished: true}
	stub.insert = context.DeadlineExceeded
	r := newEnrollRouter(t, stub, true)

	rec := postEnroll(t, r, gin.H{"course_id": courseID.String()})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
