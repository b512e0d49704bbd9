package admin

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"
	"context"

	"github.com/google/uuid"
)

type profileRepo interface {
	IsAdmin(ctx context.Context, id uuid.UUID) (bool, error)
	CountProfiles(ctx context.Context) (int, error)
}

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate) (*models.Course, error)
	ListAllCourses(ctx context.Context) ([]models.CourseSummary, error)
	CountCourses(ctx context.Context) (total int, published int, err error)
}

type enrollmentRepo interface {
	EnrolleesByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Enrollee, error)
	CountEnrollments(ctx context.Context) (int, error)
}

type searchRepo interface {
	Update(ctx context.Context, course models.Course) error
}

type AdminService struct {
	log            logger.Log
	profileRepo    profileRepo
	courseRepo     courseRepo
	enrollmentRepo enrollmentRepo
	searchRepo     searchRepo
}

func NewAdminService(log logger.Log, p profileRepo, c courseRepo, e enrollmentRepo, s searchRepo) *AdminService {
	return &AdminService{
		log:            log,
		profileRepo:    p,
		courseRepo:     c,
		enrollmentRepo: e,
		searchRepo:     s,
	}
}

// IsAdmin re-reads the admin flag from storage and fails closed: any
// lookup error reads as "not admin". There is deliberately no caching, so
// every privileged call pays one extra round trip.
func (s *AdminService) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	admin, err := s.profileRepo.IsAdmin(ctx, userID)
	if err != nil {
		return false
	}
	return admin
}

// requireAdmin gates every privileged operation at call time.
func (s *AdminService) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	if !s.IsAdmin(ctx, userID) {
		return app_errors.ErrAdminRequired
	}
	return nil
}

func (s *AdminService) AllCourses(ctx context.Context, callerID uuid.UUID) ([]models.CourseSummary, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.courseRepo.ListAllCourses(ctx)
}

func (s *AdminService) PlatformStats(ctx context.Context, callerID uuid.UUID) (*models.PlatformStats, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	users, err := s.profileRepo.CountProfiles(ctx)
	if err != nil {
		return nil, err
	}
	courses, published, err := s.courseRepo.CountCourses(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollmentRepo.CountEnrollments(ctx)
	if err != nil {
		return nil, err
	}

	return &models.PlatformStats{
		TotalUsers:       users,
		TotalCourses:     courses,
		PublishedCourses: published,
		TotalEnrollments: enrollments,
	}, nil
}

// CourseWithEnrollees is the admin course view: the course row plus every
// enrolled user's profile.
func (s *AdminService) CourseWithEnrollees(ctx context.Context, courseID, callerID uuid.UUID) (*models.Course, []models.Enrollee, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, nil, err
	}

	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	enrollees, err := s.enrollmentRepo.EnrolleesByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, enrollees, nil
}

// UpdateAnyCourse mutates a course regardless of ownership.
func (s *AdminService) UpdateAnyCourse(ctx context.Context, courseID uuid.UUID, upd models.CourseUpdate, callerID uuid.UUID) (*models.Course, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	course, err := s.courseRepo.UpdateCourse(ctx, courseID, upd)
	if err != nil {
		return nil, err
	}
	if err := s.searchRepo.Update(ctx, *course); err != nil {
		s.log.ErrorErr("UpdateAnyCourse: failed to reindex course", err, "course_id", courseID)
	}
	return course, nil
}
