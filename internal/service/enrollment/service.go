package enrollment

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"
	"context"
	"time"

	"github.com/google/uuid"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type enrollmentRepo interface {
	CreateEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	EnrolledCoursesWithProgress(ctx context.Context, userID uuid.UUID) ([]models.EnrolledCourse, error)
}

type progressRepo interface {
	UpsertProgress(ctx context.Context, p models.Progress) (*models.Progress, error)
	UpdatePosition(ctx context.Context, userID, lessonID uuid.UUID, position float64) (*models.Progress, error)
	ProgressByCourse(ctx context.Context, userID, courseID uuid.UUID) ([]models.Progress, error)
	CourseCompletion(ctx context.Context, userID, courseID uuid.UUID) (float64, error)
	NextLesson(ctx context.Context, userID, courseID uuid.UUID) (*models.Lesson, error)
}

type lessonRepo interface {
	LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
}

type moduleRepo interface {
	ModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error)
}

type EnrollmentService struct {
	log            logger.Log
	courseRepo     courseRepo
	enrollmentRepo enrollmentRepo
	progressRepo   progressRepo
	lessonRepo     lessonRepo
	moduleRepo     moduleRepo
}

func NewEnrollmentService(log logger.Log, c courseRepo, e enrollmentRepo, p progressRepo, l lessonRepo, m moduleRepo) *EnrollmentService {
	return &EnrollmentService{
		log:            log,
		courseRepo:     c,
		enrollmentRepo: e,
		progressRepo:   p,
		lessonRepo:     l,
		moduleRepo:     m,
	}
}

// Enroll enrolls the user in a published course. The course must exist and
// be published; the unique enrollment constraint makes a repeat call fail
// with ErrAlreadyEnrolled instead of inserting a second row.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, app_errors.ErrCourseNotPublished
	}
	return s.enrollmentRepo.CreateEnrollment(ctx, userID, courseID)
}

func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return s.enrollmentRepo.IsEnrolled(ctx, userID, courseID)
}

func (s *EnrollmentService) EnrolledCourses(ctx context.Context, userID uuid.UUID) ([]models.EnrolledCourse, error) {
	return s.enrollmentRepo.EnrolledCoursesWithProgress(ctx, userID)
}

// requireEnrolled resolves the lesson's course and rejects callers without
// an enrollment row for it.
func (s *EnrollmentService) requireEnrolled(ctx context.Context, userID, lessonID uuid.UUID) error {
	lesson, err := s.lessonRepo.LessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	module, err := s.moduleRepo.ModuleByID(ctx, lesson.ModuleID)
	if err != nil {
		return err
	}
	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, userID, module.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return app_errors.ErrNotEnrolled
	}
	return nil
}

// MarkLessonCompleted upserts the completion record for the lesson. The
// optional position keeps the video playhead alongside the completion.
// Only enrolled users may record progress.
func (s *EnrollmentService) MarkLessonCompleted(ctx context.Context, userID, lessonID uuid.UUID, lastPosition *float64) (*models.Progress, error) {
	if err := s.requireEnrolled(ctx, userID, lessonID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return s.progressRepo.UpsertProgress(ctx, models.Progress{
		UserID:       userID,
		LessonID:     lessonID,
		Completed:    true,
		CompletedAt:  &now,
		LastPosition: lastPosition,
	})
}

// UpdateLessonProgress moves the playhead for a video lesson. Last write
// wins between concurrent writers. Only enrolled users may record progress.
func (s *EnrollmentService) UpdateLessonProgress(ctx context.Context, userID, lessonID uuid.UUID, position float64) (*models.Progress, error) {
	if err := s.requireEnrolled(ctx, userID, lessonID); err != nil {
		return nil, err
	}
	return s.progressRepo.UpdatePosition(ctx, userID, lessonID, position)
}

// CourseProgress combines the completion percentage with the raw progress
// rows of the course. No progress at all reads as 0.
func (s *EnrollmentService) CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (*models.CourseProgress, error) {
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	completion, err := s.progressRepo.CourseCompletion(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	progress, err := s.progressRepo.ProgressByCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return &models.CourseProgress{
		Completion: completion,
		Lessons:    progress,
	}, nil
}

// NextLesson is the first uncompleted lesson of the course in module and
// lesson order; nil when the course is finished.
func (s *EnrollmentService) NextLesson(ctx context.Context, userID, courseID uuid.UUID) (*models.Lesson, error) {
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.progressRepo.NextLesson(ctx, userID, courseID)
}
