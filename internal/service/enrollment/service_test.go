package enrollment

import (
	"context"
	"testing"
	"time"

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

type enrollmentKey struct {
	userID   uuid.UUID
	courseID uuid.UUID
}

type fakeEnrollmentRepo struct {
	rows map[enrollmentKey]bool
}

func (f *fakeEnrollmentRepo) CreateEnrollment(_ context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	key := enrollmentKey{userID, courseID}
	if f.rows[key] {
		return nil, app_errors.ErrAlreadyEnrolled
	}
	f.rows[key] = true
	return &models.Enrollment{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}, nil
}

func (f *fakeEnrollmentRepo) IsEnrolled(_ context.Context, userID, courseID uuid.UUID) (bool, error) {
	return f.rows[enrollmentKey{userID, courseID}], nil
}

func (f *fakeEnrollmentRepo) EnrolledCoursesWithProgress(_ context.Context, _ uuid.UUID) ([]models.EnrolledCourse, error) {
	return nil, nil
}

type fakeProgressRepo struct {
	records    map[enrollmentKey]*models.Progress
	completion float64
	next       *models.Lesson
}

func progressKey(userID, lessonID uuid.UUID) enrollmentKey {
	return enrollmentKey{userID, lessonID}
}

func (f *fakeProgressRepo) UpsertProgress(_ context.Context, p models.Progress) (*models.Progress, error) {
	key := progressKey(p.UserID, p.LessonID)
	existing, ok := f.records[key]
	if ok && p.LastPosition == nil {
		p.LastPosition = existing.LastPosition
	}
	f.records[key] = &p
	return &p, nil
}

func (f *fakeProgressRepo) UpdatePosition(_ context.Context, userID, lessonID uuid.UUID, position float64) (*models.Progress, error) {
	key := progressKey(userID, lessonID)
	record, ok := f.records[key]
	if !ok {
		record = &models.Progress{UserID: userID, LessonID: lessonID}
		f.records[key] = record
	}
	record.LastPosition = &position
	return record, nil
}

func (f *fakeProgressRepo) ProgressByCourse(_ context.Context, userID, _ uuid.UUID) ([]models.Progress, error) {
	var out []models.Progress
	for key, record := range f.records {
		if key.userID == userID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) CourseCompletion(_ context.Context, _, _ uuid.UUID) (float64, error) {
	return f.completion, nil
}

func (f *fakeProgressRepo) NextLesson(_ context.Context, _, _ uuid.UUID) (*models.Lesson, error) {
	return f.next, nil
}

type fakeLessonRepo struct {
	lessons map[uuid.UUID]*models.Lesson
}

func (f *fakeLessonRepo) LessonByID(_ context.Context, id uuid.UUID) (*models.Lesson, error) {
	lesson, ok := f.lessons[id]
	if !ok {
		return nil, app_errors.ErrLessonNotFound
	}
	return lesson, nil
}

type fakeModuleRepo struct {
	modules map[uuid.UUID]*models.Module
}

func (f *fakeModuleRepo) ModuleByID(_ context.Context, id uuid.UUID) (*models.Module, error) {
	module, ok := f.modules[id]
	if !ok {
		return nil, app_errors.ErrModuleNotFound
	}
	return module, nil
}

type fixture struct {
	service  *EnrollmentService
	courses  *fakeCourseRepo
	rows     *fakeEnrollmentRepo
	progress *fakeProgressRepo
	lessons  *fakeLessonRepo
	modules  *fakeModuleRepo

	published   uuid.UUID
	unpublished uuid.UUID
	moduleID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	published := uuid.New()
	unpublished := uuid.New()
	moduleID := uuid.New()

	courses := &fakeCourseRepo{courses: map[uuid.UUID]*models.Course{
		published:   {ID: published, Title: "Live", IsPublished: true},
		unpublished: {ID: unpublished, Title: "Draft", IsPublished: false},
	}}
	rows := &fakeEnrollmentRepo{rows: map[enrollmentKey]bool{}}
	progress := &fakeProgressRepo{records: map[enrollmentKey]*models.Progress{}}
	lessons := &fakeLessonRepo{lessons: map[uuid.UUID]*models.Lesson{}}
	modules := &fakeModuleRepo{modules: map[uuid.UUID]*models.Module{
		moduleID: {ID: moduleID, CourseID: published, Order: 1},
	}}

	return &fixture{
		service:     NewEnrollmentService(logger.New("local"), courses, rows, progress, lessons, modules),
		courses:     courses,
		rows:        rows,
		progress:    progress,
		lessons:     lessons,
		modules:     modules,
		published:   published,
		unpublished: unpublished,
		moduleID:    moduleID,
	}
}

// addLesson registers a video lesson in the published course's module.
func (f *fixture) addLesson(t *testing.T) uuid.UUID {
	t.Helper()
	lessonID := uuid.New()
	f.lessons.lessons[lessonID] = &models.Lesson{
		ID:       lessonID,
		ModuleID: f.moduleID,
		Type:     models.LessonTypeVideo,
	}
	return lessonID
}

func (f *fixture) enroll(t *testing.T, userID uuid.UUID) {
	t.Helper()
	_, err := f.service.Enroll(context.Background(), userID, f.published)
	require.NoError(t, err)
}

func TestEnroll_PublishedCourse(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	enrollment, err := f.service.Enroll(context.Background(), userID, f.published)
	require.NoError(t, err)
	require.Equal(t, userID, enrollment.UserID)
	require.Equal(t, f.published, enrollment.CourseID)
}

func TestEnroll_UnpublishedCourseRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Enroll(context.Background(), uuid.New(), f.unpublished)
	require.ErrorIs(t, err, app_errors.ErrCourseNotPublished)
}

func TestEnroll_MissingCourse(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Enroll(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, app_errors.ErrCourseNotFound)
}

func TestEnroll_RepeatEnrollment(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	_, err := f.service.Enroll(context.Background(), userID, f.published)
	require.NoError(t, err)

	_, err = f.service.Enroll(context.Background(), userID, f.published)
	require.ErrorIs(t, err, app_errors.ErrAlreadyEnrolled)

	enrolled, err := f.service.IsEnrolled(context.Background(), userID, f.published)
	require.NoError(t, err)
	require.True(t, enrolled)
}

func TestMarkLessonCompleted_UpsertsRecord(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	lessonID := f.addLesson(t)
	f.enroll(t, userID)

	position := 42.5
	progress, err := f.service.MarkLessonCompleted(context.Background(), userID, lessonID, &position)
	require.NoError(t, err)
	require.True(t, progress.Completed)
	require.NotNil(t, progress.CompletedAt)
	require.Equal(t, 42.5, *progress.LastPosition)
}

func TestMarkLessonCompleted_SecondCallKeepsPosition(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	lessonID := f.addLesson(t)
	f.enroll(t, userID)

	position := 10.0
	_, err := f.service.MarkLessonCompleted(context.Background(), userID, lessonID, &position)
	require.NoError(t, err)

	progress, err := f.service.MarkLessonCompleted(context.Background(), userID, lessonID, nil)
	require.NoError(t, err)
	require.True(t, progress.Completed)
	require.NotNil(t, progress.LastPosition)
	require.Equal(t, 10.0, *progress.LastPosition)
}

func TestMarkLessonCompleted_MissingLesson(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.MarkLessonCompleted(context.Background(), uuid.New(), uuid.New(), nil)
	require.ErrorIs(t, err, app_errors.ErrLessonNotFound)
}

func TestMarkLessonCompleted_RequiresEnrollment(t *testing.T) {
	f := newFixture(t)
	lessonID := f.addLesson(t)

	_, err := f.service.MarkLessonCompleted(context.Background(), uuid.New(), lessonID, nil)
	require.ErrorIs(t, err, app_errors.ErrNotEnrolled)
	require.Empty(t, f.progress.records)
}

func TestUpdateLessonProgress_RequiresEnrollment(t *testing.T) {
	f := newFixture(t)
	lessonID := f.addLesson(t)

	_, err := f.service.UpdateLessonProgress(context.Background(), uuid.New(), lessonID, 30)
	require.ErrorIs(t, err, app_errors.ErrNotEnrolled)
	require.Empty(t, f.progress.records)
}

func TestUpdateLessonProgress_LastWriteWins(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	lessonID := f.addLesson(t)
	f.enroll(t, userID)

	_, err := f.service.UpdateLessonProgress(context.Background(), userID, lessonID, 15)
	require.NoError(t, err)

	progress, err := f.service.UpdateLessonProgress(context.Background(), userID, lessonID, 90)
	require.NoError(t, err)
	require.Equal(t, 90.0, *progress.LastPosition)
}

func TestCourseProgress_NoProgressReadsAsZero(t *testing.T) {
	f := newFixture(t)

	progress, err := f.service.CourseProgress(context.Background(), uuid.New(), f.published)
	require.NoError(t, err)
	require.Equal(t, 0.0, progress.Completion)
	require.Empty(t, progress.Lessons)
}

func TestNextLesson_NilWhenFinished(t *testing.T) {
	f := newFixture(t)

	lesson, err := f.service.NextLesson(context.Background(), uuid.New(), f.published)
	require.NoError(t, err)
	require.Nil(t, lesson)
}
