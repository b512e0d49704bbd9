package postgres

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentPostgres struct {
	db *pgxpool.Pool
}

func NewEnrollmentPostgres(db *pgxpool.Pool) *EnrollmentPostgres {
	return &EnrollmentPostgres{db: db}
}

// CreateEnrollment inserts the enrollment. A unique (user_id, course_id)
// constraint turns a duplicate into ErrAlreadyEnrolled.
func (r *EnrollmentPostgres) CreateEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	query := `
		INSERT INTO enrollments (id, user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, enrollment.ID, enrollment.UserID, enrollment.CourseID, enrollment.EnrolledAt)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return nil, app_errors.ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}
	return enrollment, nil
}

func (r *EnrollmentPostgres) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2
		)
	`, userID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

// EnrolleesByCourse lists enrollments joined with the enrolled users'
// profiles, for the admin course view.
func (r *EnrollmentPostgres) EnrolleesByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Enrollee, error) {
	query := `
		SELECT e.id, e.enrolled_at, p.id, p.email, p.username, p.full_name
		  FROM enrollments e
		  JOIN profiles p ON p.id = e.user_id
		 WHERE e.course_id = $1
		 ORDER BY e.enrolled_at
	`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollees: %w", err)
	}
	defer rows.Close()

	var enrollees []models.Enrollee
	for rows.Next() {
		var e models.Enrollee
		if err := rows.Scan(&e.EnrollmentID, &e.EnrolledAt, &e.UserID, &e.Email, &e.Username, &e.FullName); err != nil {
			return nil, err
		}
		enrollees = append(enrollees, e)
	}
	return enrollees, rows.Err()
}

// EnrolledCoursesWithProgress returns the user's enrolled courses together
// with their completion percentage, computed as completed lessons over all
// lessons of the course. A course with no lessons counts as 0.
func (r *EnrollmentPostgres) EnrolledCoursesWithProgress(ctx context.Context, userID uuid.UUID) ([]models.EnrolledCourse, error) {
	query := `
		SELECT c.id, c.title, c.description, c.cover_image_url, c.cover_key,
		       c.is_published, c.created_by, c.created_at, c.updated_at,
		       e.enrolled_at,
		       COALESCE(
		           100.0 * (
		               SELECT COUNT(*)
		                 FROM progress pr
		                 JOIN lessons l ON l.id = pr.lesson_id
		                 JOIN modules m ON m.id = l.module_id
		                WHERE pr.user_id = e.user_id AND pr.completed AND m.course_id = c.id
		           ) / NULLIF((
		               SELECT COUNT(*)
		                 FROM lessons l
		                 JOIN modules m ON m.id = l.module_id
		                WHERE m.course_id = c.id
		           ), 0),
		       0)
		  FROM enrollments e
		  JOIN courses c ON c.id = e.course_id
		 WHERE e.user_id = $1
		 ORDER BY e.enrolled_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrolled courses: %w", err)
	}
	defer rows.Close()

	var enrolled []models.EnrolledCourse
	for rows.Next() {
		var ec models.EnrolledCourse
		if err := rows.Scan(
			&ec.Course.ID, &ec.Course.Title, &ec.Course.Description, &ec.Course.CoverImageURL, &ec.Course.CoverKey,
			&ec.Course.IsPublished, &ec.Course.CreatedBy, &ec.Course.CreatedAt, &ec.Course.UpdatedAt,
			&ec.EnrolledAt, &ec.Completion,
		); err != nil {
			return nil, err
		}
		enrolled = append(enrolled, ec)
	}
	return enrolled, rows.Err()
}

func (r *EnrollmentPostgres) CountEnrollments(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}
