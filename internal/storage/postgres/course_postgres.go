package postgres

import (
	"Galeguia/internal/app_errors"
	"Galeguia/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, title, description, cover_image_url, cover_key, is_published, created_by, created_at, updated_at`

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

func scanCourse(row pgx.Row, c *models.Course) error {
	return row.Scan(
		&c.ID, &c.Title, &c.Description, &c.CoverImageURL, &c.CoverKey,
		&c.IsPublished, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
}

func (r *CoursePostgres) CreateCourse(ctx context.Context, course *models.Course) (uuid.UUID, error) {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	query := `
		INSERT INTO courses (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		course.ID, course.Title, course.Description, course.CoverImageURL, course.CoverKey,
		course.IsPublished, course.CreatedBy, course.CreatedAt, course.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert course: %w", err)
	}
	return id, nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	course := &models.Course{}
	if err := scanCourse(r.db.QueryRow(ctx, query, id), course); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (r *CoursePostgres) UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate) (*models.Course, error) {
	query := `
		UPDATE courses
		   SET title        = COALESCE($2, title),
		       description  = COALESCE($3, description),
		       is_published = COALESCE($4, is_published),
		       updated_at   = NOW()
		 WHERE id = $1
		RETURNING ` + courseColumns
	course := &models.Course{}
	err := scanCourse(r.db.QueryRow(ctx, query, id, upd.Title, upd.Description, upd.IsPublished), course)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

func (r *CoursePostgres) UpdateCoverImage(ctx context.Context, id uuid.UUID, url, objectKey string) error {
	query := `
		UPDATE courses
		   SET cover_image_url = $2,
		       cover_key       = $3,
		       updated_at      = NOW()
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, id, url, objectKey)
	if err != nil {
		return fmt.Errorf("failed to update cover image: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

// DeleteCourse removes the course together with its modules and lessons
// in one transaction.
func (r *CoursePostgres) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `
		DELETE FROM lessons
		 WHERE module_id IN (SELECT id FROM modules WHERE course_id = $1)
	`, id); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM modules WHERE course_id = $1`, id); err != nil {
		return err
	}
	cmdTag, err := tx.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}

	return tx.Commit(ctx)
}

func (r *CoursePostgres) ListPublishedCourses(ctx context.Context) ([]models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		  FROM courses
		 WHERE is_published
		 ORDER BY created_at DESC
	`
	return r.queryCourses(ctx, query)
}

func (r *CoursePostgres) ListCoursesByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		  FROM courses
		 WHERE created_by = $1
		 ORDER BY created_at DESC
	`
	return r.queryCourses(ctx, query, creatorID)
}

// ListAccessibleCourses returns every course the user may read: published
// ones plus their own. Admins see everything.
func (r *CoursePostgres) ListAccessibleCourses(ctx context.Context, userID uuid.UUID) ([]models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		  FROM courses
		 WHERE is_published
		    OR created_by = $1
		    OR EXISTS (SELECT 1 FROM profiles WHERE id = $1 AND is_admin)
		 ORDER BY created_at DESC
	`
	return r.queryCourses(ctx, query, userID)
}

func (r *CoursePostgres) CoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		  FROM courses
		 WHERE id = ANY($1)
		 ORDER BY created_at DESC
	`
	return r.queryCourses(ctx, query, ids)
}

func (r *CoursePostgres) queryCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var c models.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// ListAllCourses is the admin view: every course with its creator and
// module count, newest first.
func (r *CoursePostgres) ListAllCourses(ctx context.Context) ([]models.CourseSummary, error) {
	query := `
		SELECT c.id, c.title, c.description, c.cover_image_url, c.cover_key,
		       c.is_published, c.created_by, c.created_at, c.updated_at,
		       p.email, p.username,
		       (SELECT COUNT(*) FROM modules m WHERE m.course_id = c.id)
		  FROM courses c
		  JOIN profiles p ON p.id = c.created_by
		 ORDER BY c.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all courses: %w", err)
	}
	defer rows.Close()

	var summaries []models.CourseSummary
	for rows.Next() {
		var s models.CourseSummary
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Description, &s.CoverImageURL, &s.CoverKey,
			&s.IsPublished, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
			&s.CreatorEmail, &s.CreatorUsername, &s.ModuleCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *CoursePostgres) CountCourses(ctx context.Context) (total int, published int, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_published) FROM courses
	`).Scan(&total, &published)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return total, published, nil
}
