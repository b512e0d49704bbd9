package course

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
)

const maxCoverSizeBytes = 5 << 20

type courseRepo interface {
	CreateCourse(ctx context.Context, course *models.Course) (uuid.UUID, error)
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate) (*models.Course, error)
	UpdateCoverImage(ctx context.Context, id uuid.UUID, url, objectKey string) error
	DeleteCourse(ctx context.Context, id uuid.UUID) error
	ListPublishedCourses(ctx context.Context) ([]models.Course, error)
	ListCoursesByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Course, error)
	ListAccessibleCourses(ctx context.Context, userID uuid.UUID) ([]models.Course, error)
	CoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Course, error)
}

type moduleRepo interface {
	ModulesByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Module, error)
}

type lessonRepo interface {
	LessonsByModule(ctx context.Context, moduleID uuid.UUID) ([]models.Lesson, error)
}

type profileRepo interface {
	IsAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}

type searchRepo interface {
	Index(ctx context.Context, course models.Course) error
	Update(ctx context.Context, course models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

type coverStorage interface {
	UploadCover(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (objectKey string, publicURL string, err error)
	DeleteCover(ctx context.Context, objectKey string) error
}

type mediaStorage interface {
	DeleteVideo(ctx context.Context, objectKey string) error
}

type CourseService struct {
	log          logger.Log
	courseRepo   courseRepo
	moduleRepo   moduleRepo
	lessonRepo   lessonRepo
	profileRepo  profileRepo
	searchRepo   searchRepo
	coverStorage coverStorage
	mediaStorage mediaStorage
}

func NewCourseService(log logger.Log, courseRepo courseRepo, moduleRepo moduleRepo,
	lessonRepo lessonRepo, profileRepo profileRepo, searchRepo searchRepo,
	coverStorage coverStorage, mediaStorage mediaStorage,
) *CourseService {
	return &CourseService{
		log:          log,
		courseRepo:   courseRepo,
		moduleRepo:   moduleRepo,
		lessonRepo:   lessonRepo,
		profileRepo:  profileRepo,
		searchRepo:   searchRepo,
		coverStorage: coverStorage,
		mediaStorage: mediaStorage,
	}
}

// isAdmin treats any lookup failure as "not admin".
func (s *CourseService) isAdmin(ctx context.Context, userID uuid.UUID) bool {
	ok, err := s.profileRepo.IsAdmin(ctx, userID)
	if err != nil {
		return false
	}
	return ok
}

// canEdit requires the caller to be the course owner or an admin; the admin
// flag is re-read from storage on every call.
func (s *CourseService) canEdit(ctx context.Context, course *models.Course, userID uuid.UUID) bool {
	return course.CreatedBy == userID || s.isAdmin(ctx, userID)
}

func (s *CourseService) CreateCourse(ctx context.Context, title, description string, creatorID uuid.UUID) (*models.Course, error) {
	course := &models.Course{
		Title:       title,
		Description: description,
		IsPublished: false,
		CreatedBy:   creatorID,
	}
	if _, err := s.courseRepo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	if err := s.searchRepo.Index(ctx, *course); err != nil {
		s.log.ErrorErr("CreateCourse: failed to index course", err, "course_id", course.ID)
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate, userID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(ctx, course, userID) {
		return nil, app_errors.ErrNotCourseOwner
	}
	updated, err := s.courseRepo.UpdateCourse(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if err := s.searchRepo.Update(ctx, *updated); err != nil {
		s.log.ErrorErr("UpdateCourse: failed to reindex course", err, "course_id", id)
	}
	return updated, nil
}

func (s *CourseService) TogglePublished(ctx context.Context, id uuid.UUID, isPublished bool, userID uuid.UUID) (*models.Course, error) {
	return s.UpdateCourse(ctx, id, models.CourseUpdate{IsPublished: &isPublished}, userID)
}

// DeleteCourse removes the course with its modules and lessons. Stored
// objects and the search document are cleaned up best effort.
func (s *CourseService) DeleteCourse(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.canEdit(ctx, course, userID) {
		return app_errors.ErrNotCourseOwner
	}

	modules, err := s.moduleRepo.ModulesByCourse(ctx, id)
	if err != nil {
		return err
	}
	for _, module := range modules {
		lessons, err := s.lessonRepo.LessonsByModule(ctx, module.ID)
		if err != nil {
			return err
		}
		for _, lesson := range lessons {
			if lesson.VideoKey != nil && *lesson.VideoKey != "" {
				if err := s.mediaStorage.DeleteVideo(ctx, *lesson.VideoKey); err != nil {
					s.log.ErrorErr("DeleteCourse: failed to delete lesson video", err, "lesson_id", lesson.ID)
				}
			}
		}
	}
	if course.CoverKey != "" {
		if err := s.coverStorage.DeleteCover(ctx, course.CoverKey); err != nil {
			s.log.ErrorErr("DeleteCourse: failed to delete cover", err, "course_id", id)
		}
	}

	if err := s.courseRepo.DeleteCourse(ctx, id); err != nil {
		return err
	}
	if err := s.searchRepo.Delete(ctx, id); err != nil {
		s.log.ErrorErr("DeleteCourse: failed to deindex course", err, "course_id", id)
	}
	return nil
}

func (s *CourseService) PublishedCourses(ctx context.Context) ([]models.Course, error) {
	return s.courseRepo.ListPublishedCourses(ctx)
}

func (s *CourseService) MyCourses(ctx context.Context, creatorID uuid.UUID) ([]models.Course, error) {
	return s.courseRepo.ListCoursesByCreator(ctx, creatorID)
}

func (s *CourseService) AccessibleCourses(ctx context.Context, userID uuid.UUID) ([]models.Course, error) {
	return s.courseRepo.ListAccessibleCourses(ctx, userID)
}

// CourseWithContent returns the course with its modules and lessons ordered
// by order index. Unpublished courses are visible only to the owner and
// admins.
func (s *CourseService) CourseWithContent(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.CourseContent, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && !s.canEdit(ctx, course, userID) {
		return nil, app_errors.ErrCourseNotFound
	}

	modules, err := s.moduleRepo.ModulesByCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	content := &models.CourseContent{Course: *course}
	for _, module := range modules {
		lessons, err := s.lessonRepo.LessonsByModule(ctx, module.ID)
		if err != nil {
			return nil, err
		}
		content.Modules = append(content.Modules, models.ModuleWithLessons{
			Module:  module,
			Lessons: lessons,
		})
	}
	return content, nil
}

// SearchCourses matches the query against the search index and filters the
// hits down to what the caller may read.
func (s *CourseService) SearchCourses(ctx context.Context, query string, size int, userID uuid.UUID) ([]models.Course, error) {
	ids, err := s.searchRepo.Search(ctx, query, size)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	courses, err := s.courseRepo.CoursesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	admin := s.isAdmin(ctx, userID)
	var visible []models.Course
	for _, c := range courses {
		if c.IsPublished || c.CreatedBy == userID || admin {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// UploadCoverImage uploads the file, persists the public URL on the course
// row and removes the previous cover best effort.
func (s *CourseService) UploadCoverImage(ctx context.Context, courseID uuid.UUID, filename string, file io.Reader, size int64, contentType string, userID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !s.canEdit(ctx, course, userID) {
		return nil, app_errors.ErrNotCourseOwner
	}
	if size <= 0 || size > maxCoverSizeBytes {
		return nil, app_errors.ErrFileSize
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, app_errors.ErrNotImage
	}

	if course.CoverKey != "" {
		if err := s.coverStorage.DeleteCover(ctx, course.CoverKey); err != nil {
			s.log.ErrorErr("UploadCoverImage: failed to delete previous cover", err, "course_id", courseID)
		}
	}

	objectKey, publicURL, err := s.coverStorage.UploadCover(ctx, courseID, filename, file, size, contentType)
	if err != nil {
		return nil, err
	}
	if err := s.courseRepo.UpdateCoverImage(ctx, courseID, publicURL, objectKey); err != nil {
		return nil, err
	}

	course.CoverImageURL = publicURL
	course.CoverKey = objectKey
	return course, nil
}
