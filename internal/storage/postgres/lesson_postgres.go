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

const lessonColumns = `id, module_id, title, type, content, video_url, video_key, lesson_order, created_at, updated_at`

type LessonPostgres struct {
	db *pgxpool.Pool
}

func NewLessonPostgres(db *pgxpool.Pool) *LessonPostgres {
	return &LessonPostgres{db: db}
}

func scanLesson(row pgx.Row, l *models.Lesson) error {
	return row.Scan(
		&l.ID, &l.ModuleID, &l.Title, &l.Type, &l.Content, &l.VideoURL, &l.VideoKey,
		&l.Order, &l.CreatedAt, &l.UpdatedAt,
	)
}

func (r *LessonPostgres) CreateLesson(ctx context.Context, lesson models.Lesson) (*models.Lesson, error) {
	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	query := `
		INSERT INTO lessons (` + lessonColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		lesson.ID, lesson.ModuleID, lesson.Title, lesson.Type, lesson.Content,
		lesson.VideoURL, lesson.VideoKey, lesson.Order, lesson.CreatedAt, lesson.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert lesson: %w", err)
	}
	return &lesson, nil
}

func (r *LessonPostgres) LessonByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	lesson := &models.Lesson{}
	if err := scanLesson(r.db.QueryRow(ctx, query, id), lesson); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

func (r *LessonPostgres) LessonsByModule(ctx context.Context, moduleID uuid.UUID) ([]models.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		  FROM lessons
		 WHERE module_id = $1
		 ORDER BY lesson_order
	`
	rows, err := r.db.Query(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []models.Lesson
	for rows.Next() {
		var l models.Lesson
		if err := scanLesson(rows, &l); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *LessonPostgres) UpdateLesson(ctx context.Context, id uuid.UUID, upd models.LessonUpdate) (*models.Lesson, error) {
	query := `
		UPDATE lessons
		   SET title      = COALESCE($2, title),
		       type       = COALESCE($3, type),
		       content    = COALESCE($4, content),
		       updated_at = NOW()
		 WHERE id = $1
		RETURNING ` + lessonColumns
	lesson := &models.Lesson{}
	if err := scanLesson(r.db.QueryRow(ctx, query, id, upd.Title, upd.Type, upd.Content), lesson); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}
	return lesson, nil
}

func (r *LessonPostgres) UpdateLessonVideo(ctx context.Context, id uuid.UUID, url, objectKey string) error {
	query := `
		UPDATE lessons
		   SET type       = $2,
		       video_url  = $3,
		       video_key  = $4,
		       updated_at = NOW()
		 WHERE id = $1
	`
	cmdTag, err := r.db.Exec(ctx, query, id, models.LessonTypeVideo, url, objectKey)
	if err != nil {
		return fmt.Errorf("failed to update lesson video: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrLessonNotFound
	}
	return nil
}

func (r *LessonPostgres) MaxLessonOrder(ctx context.Context, moduleID uuid.UUID) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(lesson_order), 0) FROM lessons WHERE module_id = $1`
	if err := r.db.QueryRow(ctx, query, moduleID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max lesson order: %w", err)
	}
	return max, nil
}

// DeleteLesson removes the lesson and closes the order gap among the
// remaining siblings in one transaction.
func (r *LessonPostgres) DeleteLesson(ctx context.Context, lessonID, moduleID uuid.UUID, lessonOrder int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, lessonID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		UPDATE lessons SET lesson_order = lesson_order - 1
		 WHERE module_id = $1 AND lesson_order > $2
	`, moduleID, lessonOrder); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReorderLessons applies the given {id, order} tuples in one transaction.
// Last write wins; duplicate or gapped orders are accepted as sent.
func (r *LessonPostgres) ReorderLessons(ctx context.Context, moduleID uuid.UUID, changes []models.OrderChange) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE lessons SET lesson_order = $3, updated_at = NOW()
		 WHERE id = $1 AND module_id = $2
	`
	for _, ch := range changes {
		if _, err := tx.Exec(ctx, query, ch.ID, moduleID, ch.Order); err != nil {
			return fmt.Errorf("failed to reorder lesson %s: %w", ch.ID, err)
		}
	}

	return tx.Commit(ctx)
}
