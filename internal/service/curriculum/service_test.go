package curriculum

import (
	"context"
	"io"
	"testing"

	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"Galeguia/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeCourseRepo struct {
	courses map[uuid.UUID]*models.Course
}

func (f *fakeCourseRepo) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return course, nil
}

type fakeModuleRepo struct {
	modules  map[uuid.UUID]*models.Module
	maxOrder int
	created  []models.Module
	deleted  []uuid.UUID
	reorders [][]models.OrderChange
}

func (f *fakeModuleRepo) CreateModule(_ context.Context, module models.Module) (*models.Module, error) {
	module.ID = uuid.New()
	f.created = append(f.created, module)
	return &module, nil
}

func (f *fakeModuleRepo) ModuleByID(_ context.Context, id uuid.UUID) (*models.Module, error) {
	module, ok := f.modules[id]
	if !ok {
		return nil, app_errors.ErrModuleNotFound
	}
	return module, nil
}

func (f *fakeModuleRepo) ModulesByCourse(_ context.Context, _ uuid.UUID) ([]models.Module, error) {
	var out []models.Module
	for _, m := range f.modules {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeModuleRepo) UpdateModule(_ context.Context, id uuid.UUID, upd models.ModuleUpdate) (*models.Module, error) {
	module, ok := f.modules[id]
	if !ok {
		return nil, app_errors.ErrModuleNotFound
	}
	if upd.Title != nil {
		module.Title = *upd.Title
	}
	return module, nil
}

func (f *fakeModuleRepo) MaxModuleOrder(_ context.Context, _ uuid.UUID) (int, error) {
	return f.maxOrder, nil
}

func (f *fakeModuleRepo) DeleteModule(_ context.Context, moduleID, _ uuid.UUID, _ int) error {
	f.deleted = append(f.deleted, moduleID)
	return nil
}

func (f *fakeModuleRepo) ReorderModules(_ context.Context, _ uuid.UUID, changes []models.OrderChange) error {
	f.reorders = append(f.reorders, changes)
	return nil
}

type fakeLessonRepo struct {
	lessons  map[uuid.UUID]*models.Lesson
	maxOrder int
	created  []models.Lesson
	deleted  []uuid.UUID
}

func (f *fakeLessonRepo) CreateLesson(_ context.Context, lesson models.Lesson) (*models.Lesson, error) {
	lesson.ID = uuid.New()
	f.created = append(f.created, lesson)
	return &lesson, nil
}

func (f *fakeLessonRepo) LessonByID(_ context.Context, id uuid.UUID) (*models.Lesson, error) {
	lesson, ok := f.lessons[id]
	if !ok {
		return nil, app_errors.ErrLessonNotFound
	}
	return lesson, nil
}

func (f *fakeLessonRepo) LessonsByModule(_ context.Context, moduleID uuid.UUID) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		if l.ModuleID == moduleID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLessonRepo) UpdateLesson(_ context.Context, id uuid.UUID, upd models.LessonUpdate) (*models.Lesson, error) {
	lesson, ok := f.lessons[id]
	if !ok {
		return nil, app_errors.ErrLessonNotFound
	}
	if upd.Title != nil {
		lesson.Title = *upd.Title
	}
	return lesson, nil
}

func (f *fakeLessonRepo) UpdateLessonVideo(_ context.Context, id uuid.UUID, url, objectKey string) error {
	lesson, ok := f.lessons[id]
	if !ok {
		return app_errors.ErrLessonNotFound
	}
	lesson.Type = models.LessonTypeVideo
	lesson.VideoURL = &url
	lesson.VideoKey = &objectKey
	return nil
}

func (f *fakeLessonRepo) MaxLessonOrder(_ context.Context, _ uuid.UUID) (int, error) {
	return f.maxOrder, nil
}

func (f *fakeLessonRepo) DeleteLesson(_ context.Context, lessonID, _ uuid.UUID, _ int) error {
	f.deleted = append(f.deleted, lessonID)
	return nil
}

func (f *fakeLessonRepo) ReorderLessons(_ context.Context, _ uuid.UUID, _ []models.OrderChange) error {
	return nil
}

type fakeProfileRepo struct {
	admins map[uuid.UUID]bool
	err    error
}

func (f *fakeProfileRepo) IsAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.admins[id], nil
}

type fakeMediaStorage struct {
	deleted []string
}

func (f *fakeMediaStorage) UploadVideo(_ context.Context, courseID, moduleID, lessonID uuid.UUID, filename string, _ io.Reader, _ int64, _ string) (string, string, error) {
	key := "courses/" + courseID.String() + "/" + filename
	return key, "http://cdn.local/" + key, nil
}

func (f *fakeMediaStorage) DeleteVideo(_ context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

type fixture struct {
	service  *CurriculumService
	courses  *fakeCourseRepo
	modules  *fakeModuleRepo
	lessons  *fakeLessonRepo
	profiles *fakeProfileRepo
	media    *fakeMediaStorage

	courseID uuid.UUID
	ownerID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ownerID := uuid.New()
	courseID := uuid.New()

	courses := &fakeCourseRepo{courses: map[uuid.UUID]*models.Course{
		courseID: {ID: courseID, Title: "Galician 101", CreatedBy: ownerID},
	}}
	modules := &fakeModuleRepo{modules: map[uuid.UUID]*models.Module{}}
	lessons := &fakeLessonRepo{lessons: map[uuid.UUID]*models.Lesson{}}
	profiles := &fakeProfileRepo{admins: map[uuid.UUID]bool{}}
	media := &fakeMediaStorage{}

	return &fixture{
		service:  NewCurriculumService(logger.New("local"), courses, modules, lessons, profiles, media),
		courses:  courses,
		modules:  modules,
		lessons:  lessons,
		profiles: profiles,
		media:    media,
		courseID: courseID,
		ownerID:  ownerID,
	}
}

func TestCreateModule_FirstModuleGetsOrderOne(t *testing.T) {
	f := newFixture(t)

	module, err := f.service.CreateModule(context.Background(), models.Module{
		CourseID: f.courseID,
		Title:    "Basics",
	}, f.ownerID)
	require.NoError(t, err)
	require.Equal(t, 1, module.Order)
}

func TestCreateModule_AppendsAfterHighestOrder(t *testing.T) {
	f := newFixture(t)
	f.modules.maxOrder = 4

	module, err := f.service.CreateModule(context.Background(), models.Module{
		CourseID: f.courseID,
		Title:    "Advanced",
	}, f.ownerID)
	require.NoError(t, err)
	require.Equal(t, 5, module.Order)
}

func TestCreateModule_StrangerRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateModule(context.Background(), models.Module{
		CourseID: f.courseID,
		Title:    "Basics",
	}, uuid.New())
	require.ErrorIs(t, err, app_errors.ErrNotCourseOwner)
	require.Empty(t, f.modules.created)
}

func TestCreateModule_AdminAllowed(t *testing.T) {
	f := newFixture(t)
	adminID := uuid.New()
	f.profiles.admins[adminID] = true

	module, err := f.service.CreateModule(context.Background(), models.Module{
		CourseID: f.courseID,
		Title:    "Basics",
	}, adminID)
	require.NoError(t, err)
	require.Equal(t, 1, module.Order)
}

func TestCreateModule_AdminLookupErrorRejects(t *testing.T) {
	f := newFixture(t)
	f.profiles.err = context.DeadlineExceeded

	_, err := f.service.CreateModule(context.Background(), models.Module{
		CourseID: f.courseID,
		Title:    "Basics",
	}, uuid.New())
	require.ErrorIs(t, err, app_errors.ErrNotCourseOwner)
}

func TestCreateLesson_DefaultsToTextWithNextOrder(t *testing.T) {
	f := newFixture(t)
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 1}
	f.lessons.maxOrder = 2

	lesson, err := f.service.CreateLesson(context.Background(), models.Lesson{
		ModuleID: moduleID,
		Title:    "Greetings",
	}, f.ownerID)
	require.NoError(t, err)
	require.Equal(t, models.LessonTypeText, lesson.Type)
	require.Equal(t, 3, lesson.Order)
}

func TestCreateLesson_UnknownTypeRejected(t *testing.T) {
	f := newFixture(t)
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 1}

	_, err := f.service.CreateLesson(context.Background(), models.Lesson{
		ModuleID: moduleID,
		Title:    "Quiz",
		Type:     "quiz",
	}, f.ownerID)
	require.ErrorIs(t, err, app_errors.ErrLessonType)
	require.Empty(t, f.lessons.created)
}

func TestUpdateLesson_UnknownTypeRejected(t *testing.T) {
	f := newFixture(t)
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 1}
	lessonID := uuid.New()
	f.lessons.lessons[lessonID] = &models.Lesson{ID: lessonID, ModuleID: moduleID, Type: models.LessonTypeText}

	badType := "quiz"
	_, err := f.service.UpdateLesson(context.Background(), lessonID, models.LessonUpdate{Type: &badType}, f.ownerID)
	require.ErrorIs(t, err, app_errors.ErrLessonType)
	require.Equal(t, models.LessonTypeText, f.lessons.lessons[lessonID].Type)
}

func TestModulesByCourse_UnpublishedHiddenFromStranger(t *testing.T) {
	f := newFixture(t)
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 1}

	_, err := f.service.ModulesByCourse(context.Background(), f.courseID, uuid.New())
	require.ErrorIs(t, err, app_errors.ErrCourseNotFound)

	modules, err := f.service.ModulesByCourse(context.Background(), f.courseID, f.ownerID)
	require.NoError(t, err)
	require.Len(t, modules, 1)
}

func TestModulesByCourse_PublishedVisibleToStranger(t *testing.T) {
	f := newFixture(t)
	f.courses.courses[f.courseID].IsPublished = true
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 1}

	modules, err := f.service.ModulesByCourse(context.Background(), f.courseID, uuid.New())
	require.NoError(t, err)
	require.Len(t, modules, 1)
}

func TestLessonsByModule_UnpublishedHiddenFromStranger(t *testing.T) {
	f := newFixture(t)
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 1}
	draft := "unreleased lesson text"
	lessonID := uuid.New()
	f.lessons.lessons[lessonID] = &models.Lesson{
		ID:       lessonID,
		ModuleID: moduleID,
		Type:     models.LessonTypeText,
		Content:  &draft,
	}

	_, err := f.service.LessonsByModule(context.Background(), moduleID, uuid.New())
	require.ErrorIs(t, err, app_errors.ErrCourseNotFound)

	adminID := uuid.New()
	f.profiles.admins[adminID] = true
	lessons, err := f.service.LessonsByModule(context.Background(), moduleID, adminID)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
}

func TestDeleteModule_RemovesLessonVideos(t *testing.T) {
	f := newFixture(t)
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 2}

	videoKey := "courses/x/video.mp4"
	lessonID := uuid.New()
	f.lessons.lessons[lessonID] = &models.Lesson{
		ID:       lessonID,
		ModuleID: moduleID,
		Type:     models.LessonTypeVideo,
		VideoKey: &videoKey,
	}

	err := f.service.DeleteModule(context.Background(), moduleID, f.ownerID)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{moduleID}, f.modules.deleted)
	require.Equal(t, []string{videoKey}, f.media.deleted)
}

func TestReorderModules_PassesBatchThrough(t *testing.T) {
	f := newFixture(t)
	changes := []models.OrderChange{
		{ID: uuid.New(), Order: 2},
		{ID: uuid.New(), Order: 1},
	}

	err := f.service.ReorderModules(context.Background(), f.courseID, changes, f.ownerID)
	require.NoError(t, err)
	require.Len(t, f.modules.reorders, 1)
	require.Equal(t, changes, f.modules.reorders[0])
}

func TestUploadLessonVideo_ReplacesPreviousObject(t *testing.T) {
	f := newFixture(t)
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 1}

	oldKey := "courses/old.mp4"
	lessonID := uuid.New()
	f.lessons.lessons[lessonID] = &models.Lesson{
		ID:       lessonID,
		ModuleID: moduleID,
		Type:     models.LessonTypeText,
		VideoKey: &oldKey,
	}

	lesson, err := f.service.UploadLessonVideo(context.Background(), lessonID, "intro.mp4",
		nil, 1024, "video/mp4", f.ownerID)
	require.NoError(t, err)
	require.Equal(t, models.LessonTypeVideo, lesson.Type)
	require.NotNil(t, lesson.VideoURL)
	require.Equal(t, []string{oldKey}, f.media.deleted)
}

func TestUploadLessonVideo_ZeroSizeRejected(t *testing.T) {
	f := newFixture(t)
	moduleID := uuid.New()
	f.modules.modules[moduleID] = &models.Module{ID: moduleID, CourseID: f.courseID, Order: 1}
	lessonID := uuid.New()
	f.lessons.lessons[lessonID] = &models.Lesson{ID: lessonID, ModuleID: moduleID}

	_, err := f.service.UploadLessonVideo(context.Background(), lessonID, "intro.mp4",
		nil, 0, "video/mp4", f.ownerID)
	require.ErrorIs(t, err, app_errors.ErrFileSize)
}
