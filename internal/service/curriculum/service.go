package curriculum

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"
	"context"
	"io"

	"github.com/google/uuid"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

type moduleRepo interface {
	CreateModule(ctx context.Context, module models.Module) (*models.Module, error)
	ModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error)
	ModulesByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Module, error)
	UpdateModule(ctx context.Context, id uuid.UUID, upd models.ModuleUpdate) (*models.Module, error)
	MaxModuleOrder(ctx context.Context, courseID uuid.UUID) (int, error)
	DeleteModule(ctx context.Context, moduleID, courseID uuid.UUID, moduleOrder int) error
	ReorderModules(ctx context.Context, courseID uuid.UUID, changes []models.OrderChange) error
}

type lessonRepo interface {
	CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error)
	LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	LessonsByModule(ctx context.Context, moduleID uuid.UUID) ([]models.Lesson, error)
	UpdateLesson(ctx context.Context, id uuid.UUID, upd models.LessonUpdate) (*models.Lesson, error)
	UpdateLessonVideo(ctx context.Context, id uuid.UUID, url, objectKey string) error
	MaxLessonOrder(ctx context.Context, moduleID uuid.UUID) (int, error)
	DeleteLesson(ctx context.Context, lessonID, moduleID uuid.UUID, lessonOrder int) error
	ReorderLessons(ctx context.Context, moduleID uuid.UUID, changes []models.OrderChange) error
}

type profileRepo interface {
	IsAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}

type mediaStorage interface {
	UploadVideo(ctx context.Context, courseID, moduleID, lessonID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (objectKey string, publicURL string, err error)
	DeleteVideo(ctx context.Context, objectKey string) error
}

type CurriculumService struct {
	log          logger.Log
	courseRepo   courseRepo
	moduleRepo   moduleRepo
	lessonRepo   lessonRepo
	profileRepo  profileRepo
	mediaStorage mediaStorage
}

func NewCurriculumService(log logger.Log, c courseRepo, m moduleRepo, l lessonRepo,
	p profileRepo, media mediaStorage,
) *CurriculumService {
	return &CurriculumService{
		log:          log,
		courseRepo:   c,
		moduleRepo:   m,
		lessonRepo:   l,
		profileRepo:  p,
		mediaStorage: media,
	}
}

// authorizeCourse loads the course and checks the caller may edit it.
// The admin flag is re-read on every call and any lookup error counts
// as "not admin".
func (s *CurriculumService) authorizeCourse(ctx context.Context, courseID, userID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.CreatedBy != userID {
		admin, err := s.profileRepo.IsAdmin(ctx, userID)
		if err != nil || !admin {
			return nil, app_errors.ErrNotCourseOwner
		}
	}
	return course, nil
}

// visibleCourse loads the course for a read and hides unpublished ones
// from everyone but the owner and admins.
func (s *CurriculumService) visibleCourse(ctx context.Context, courseID, userID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && course.CreatedBy != userID {
		admin, err := s.profileRepo.IsAdmin(ctx, userID)
		if err != nil || !admin {
			return nil, app_errors.ErrCourseNotFound
		}
	}
	return course, nil
}

func (s *CurriculumService) authorizeModule(ctx context.Context, moduleID, userID uuid.UUID) (*models.Module, error) {
	module, err := s.moduleRepo.ModuleByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeCourse(ctx, module.CourseID, userID); err != nil {
		return nil, err
	}
	return module, nil
}

// CreateModule appends the module to its course: order is one past the
// highest existing sibling order, or 1 for the first module.
func (s *CurriculumService) CreateModule(ctx context.Context, module models.Module, userID uuid.UUID) (*models.Module, error) {
	if _, err := s.authorizeCourse(ctx, module.CourseID, userID); err != nil {
		return nil, err
	}

	maxOrder, err := s.moduleRepo.MaxModuleOrder(ctx, module.CourseID)
	if err != nil {
		return nil, err
	}
	module.Order = maxOrder + 1

	return s.moduleRepo.CreateModule(ctx, module)
}

func (s *CurriculumService) UpdateModule(ctx context.Context, moduleID uuid.UUID, upd models.ModuleUpdate, userID uuid.UUID) (*models.Module, error) {
	if _, err := s.authorizeModule(ctx, moduleID, userID); err != nil {
		return nil, err
	}
	return s.moduleRepo.UpdateModule(ctx, moduleID, upd)
}

// DeleteModule removes the module and its lessons; stored lesson videos are
// removed best effort.
func (s *CurriculumService) DeleteModule(ctx context.Context, moduleID uuid.UUID, userID uuid.UUID) error {
	module, err := s.authorizeModule(ctx, moduleID, userID)
	if err != nil {
		return err
	}

	lessons, err := s.lessonRepo.LessonsByModule(ctx, moduleID)
	if err != nil {
		return err
	}
	for _, lesson := range lessons {
		if lesson.VideoKey != nil && *lesson.VideoKey != "" {
			if err := s.mediaStorage.DeleteVideo(ctx, *lesson.VideoKey); err != nil {
				s.log.ErrorErr("DeleteModule: failed to delete lesson video", err, "lesson_id", lesson.ID)
			}
		}
	}

	return s.moduleRepo.DeleteModule(ctx, moduleID, module.CourseID, module.Order)
}

func (s *CurriculumService) ModulesByCourse(ctx context.Context, courseID, userID uuid.UUID) ([]models.Module, error) {
	if _, err := s.visibleCourse(ctx, courseID, userID); err != nil {
		return nil, err
	}
	return s.moduleRepo.ModulesByCourse(ctx, courseID)
}

// ReorderModules applies the {id, order} batch as sent. Last write wins.
func (s *CurriculumService) ReorderModules(ctx context.Context, courseID uuid.UUID, changes []models.OrderChange, userID uuid.UUID) error {
	if _, err := s.authorizeCourse(ctx, courseID, userID); err != nil {
		return err
	}
	return s.moduleRepo.ReorderModules(ctx, courseID, changes)
}

func validLessonType(t string) bool {
	return t == models.LessonTypeText || t == models.LessonTypeVideo
}

// CreateLesson appends the lesson to its module with the next order index.
func (s *CurriculumService) CreateLesson(ctx context.Context, lesson models.Lesson, userID uuid.UUID) (*models.Lesson, error) {
	if _, err := s.authorizeModule(ctx, lesson.ModuleID, userID); err != nil {
		return nil, err
	}
	if lesson.Type == "" {
		lesson.Type = models.LessonTypeText
	}
	if !validLessonType(lesson.Type) {
		return nil, app_errors.ErrLessonType
	}

	maxOrder, err := s.lessonRepo.MaxLessonOrder(ctx, lesson.ModuleID)
	if err != nil {
		return nil, err
	}
	lesson.Order = maxOrder + 1

	return s.lessonRepo.CreateLesson(ctx, lesson)
}

func (s *CurriculumService) UpdateLesson(ctx context.Context, lessonID uuid.UUID, upd models.LessonUpdate, userID uuid.UUID) (*models.Lesson, error) {
	if upd.Type != nil && !validLessonType(*upd.Type) {
		return nil, app_errors.ErrLessonType
	}
	lesson, err := s.lessonRepo.LessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeModule(ctx, lesson.ModuleID, userID); err != nil {
		return nil, err
	}
	return s.lessonRepo.UpdateLesson(ctx, lessonID, upd)
}

func (s *CurriculumService) DeleteLesson(ctx context.Context, lessonID uuid.UUID, userID uuid.UUID) error {
	lesson, err := s.lessonRepo.LessonByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if _, err := s.authorizeModule(ctx, lesson.ModuleID, userID); err != nil {
		return err
	}

	if lesson.VideoKey != nil && *lesson.VideoKey != "" {
		if err := s.mediaStorage.DeleteVideo(ctx, *lesson.VideoKey); err != nil {
			s.log.ErrorErr("DeleteLesson: failed to delete lesson video", err, "lesson_id", lessonID)
		}
	}

	return s.lessonRepo.DeleteLesson(ctx, lessonID, lesson.ModuleID, lesson.Order)
}

func (s *CurriculumService) LessonsByModule(ctx context.Context, moduleID, userID uuid.UUID) ([]models.Lesson, error) {
	module, err := s.moduleRepo.ModuleByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleCourse(ctx, module.CourseID, userID); err != nil {
		return nil, err
	}
	return s.lessonRepo.LessonsByModule(ctx, moduleID)
}

func (s *CurriculumService) ReorderLessons(ctx context.Context, moduleID uuid.UUID, changes []models.OrderChange, userID uuid.UUID) error {
	if _, err := s.authorizeModule(ctx, moduleID, userID); err != nil {
		return err
	}
	return s.lessonRepo.ReorderLessons(ctx, moduleID, changes)
}

// UploadLessonVideo uploads the file under the course/module/lesson path,
// marks the lesson as a video lesson and persists the public URL. The
// previous object is removed best effort.
func (s *CurriculumService) UploadLessonVideo(ctx context.Context, lessonID uuid.UUID, filename string, file io.Reader, size int64, contentType string, userID uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.LessonByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	module, err := s.authorizeModule(ctx, lesson.ModuleID, userID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, app_errors.ErrFileSize
	}

	if lesson.VideoKey != nil && *lesson.VideoKey != "" {
		if err := s.mediaStorage.DeleteVideo(ctx, *lesson.VideoKey); err != nil {
			s.log.ErrorErr("UploadLessonVideo: failed to delete previous video", err, "lesson_id", lessonID)
		}
	}

	objectKey, publicURL, err := s.mediaStorage.UploadVideo(ctx, module.CourseID, module.ID, lessonID, filename, file, size, contentType)
	if err != nil {
		return nil, err
	}
	if err := s.lessonRepo.UpdateLessonVideo(ctx, lessonID, publicURL, objectKey); err != nil {
		return nil, err
	}

	lesson.Type = models.LessonTypeVideo
	lesson.VideoURL = &publicURL
	lesson.VideoKey = &objectKey
	return lesson, nil
}
