package postgres

import (
	"Galeguia/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgressPostgres struct {
	db *pgxpool.Pool
}

func NewProgressPostgres(db *pgxpool.Pool) *ProgressPostgres {
	return &ProgressPostgres{db: db}
}

// UpsertProgress writes the progress row keyed by (user_id, lesson_id).
// Last write wins.
func (r *ProgressPostgres) UpsertProgress(ctx context.Context, p models.Progress) (*models.Progress, error) {
	p.UpdatedAt = time.Now().UTC()
	query := `
		INSERT INTO progress (user_id, lesson_id, completed, completed_at, last_position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET completed     = EXCLUDED.completed,
		              completed_at  = EXCLUDED.completed_at,
		              last_position = COALESCE(EXCLUDED.last_position, progress.last_position),
		              updated_at    = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query, p.UserID, p.LessonID, p.Completed, p.CompletedAt, p.LastPosition, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert progress: %w", err)
	}
	return &p, nil
}

// UpdatePosition moves the playhead without touching completion state.
// Creates the row when none exists yet.
func (r *ProgressPostgres) UpdatePosition(ctx context.Context, userID, lessonID uuid.UUID, position float64) (*models.Progress, error) {
	query := `
		INSERT INTO progress (user_id, lesson_id, completed, last_position, updated_at)
		VALUES ($1, $2, FALSE, $3, NOW())
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET last_position = EXCLUDED.last_position,
		              updated_at    = EXCLUDED.updated_at
		RETURNING user_id, lesson_id, completed, completed_at, last_position, updated_at
	`
	var p models.Progress
	err := r.db.QueryRow(ctx, query, userID, lessonID, position).Scan(
		&p.UserID, &p.LessonID, &p.Completed, &p.CompletedAt, &p.LastPosition, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}
	return &p, nil
}

// ProgressByCourse returns the user's progress rows for every lesson of the
// course, walked through the module relationship.
func (r *ProgressPostgres) ProgressByCourse(ctx context.Context, userID, courseID uuid.UUID) ([]models.Progress, error) {
	query := `
		SELECT pr.user_id, pr.lesson_id, pr.completed, pr.completed_at, pr.last_position, pr.updated_at
		  FROM progress pr
		  JOIN lessons l ON l.id = pr.lesson_id
		  JOIN modules m ON m.id = l.module_id
		 WHERE pr.user_id = $1 AND m.course_id = $2
	`
	rows, err := r.db.Query(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course progress: %w", err)
	}
	defer rows.Close()

	var progress []models.Progress
	for rows.Next() {
		var p models.Progress
		if err := rows.Scan(&p.UserID, &p.LessonID, &p.Completed, &p.CompletedAt, &p.LastPosition, &p.UpdatedAt); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// CourseCompletion computes the completion percentage for the user in the
// course. A course without lessons completes to 0.
func (r *ProgressPostgres) CourseCompletion(ctx context.Context, userID, courseID uuid.UUID) (float64, error) {
	query := `
		SELECT COALESCE(
		    100.0 * (
		        SELECT COUNT(*)
		          FROM progress pr
		          JOIN lessons l ON l.id = pr.lesson_id
		          JOIN modules m ON m.id = l.module_id
		         WHERE pr.user_id = $1 AND pr.completed AND m.course_id = $2
		    ) / NULLIF((
		        SELECT COUNT(*)
		          FROM lessons l
		          JOIN modules m ON m.id = l.module_id
		         WHERE m.course_id = $2
		    ), 0),
		0)
	`
	var completion float64
	if err := r.db.QueryRow(ctx, query, userID, courseID).Scan(&completion); err != nil {
		return 0, fmt.Errorf("failed to compute completion: %w", err)
	}
	return completion, nil
}

// NextLesson returns the first lesson of the course, in module then lesson
// order, that the user has not completed. Nil when nothing is left.
func (r *ProgressPostgres) NextLesson(ctx context.Context, userID, courseID uuid.UUID) (*models.Lesson, error) {
	query := `
		SELECT l.id, l.module_id, l.title, l.type, l.content, l.video_url, l.video_key,
		       l.lesson_order, l.created_at, l.updated_at
		  FROM lessons l
		  JOIN modules m ON m.id = l.module_id
		 WHERE m.course_id = $2
		   AND NOT EXISTS (
		       SELECT 1 FROM progress pr
		        WHERE pr.user_id = $1 AND pr.lesson_id = l.id AND pr.completed
		   )
		 ORDER BY m.module_order, l.lesson_order
		 LIMIT 1
	`
	lesson := &models.Lesson{}
	err := r.db.QueryRow(ctx, query, userID, courseID).Scan(
		&lesson.ID, &lesson.ModuleID, &lesson.Title, &lesson.Type, &lesson.Content,
		&lesson.VideoURL, &lesson.VideoKey, &lesson.Order, &lesson.CreatedAt, &lesson.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find next lesson: %w", err)
	}
	return lesson, nil
}
