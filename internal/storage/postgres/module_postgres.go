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

const moduleColumns = `id, course_id, title, description, module_order, created_at, updated_at`

type ModulePostgres struct {
	db *pgxpool.Pool
}

func NewModulePostgres(db *pgxpool.Pool) *ModulePostgres {
	return &ModulePostgres{db: db}
}

func scanModule(row pgx.Row, m *models.Module) error {
	return row.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Order, &m.CreatedAt, &m.UpdatedAt)
}

func (r *ModulePostgres) CreateModule(ctx context.Context, module models.Module) (*models.Module, error) {
	if module.ID == uuid.Nil {
		module.ID = uuid.New()
	}
	now := time.Now().UTC()
	module.CreatedAt = now
	module.UpdatedAt = now

	query := `
		INSERT INTO modules (` + moduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		module.ID, module.CourseID, module.Title, module.Description,
		module.Order, module.CreatedAt, module.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert module: %w", err)
	}
	return &module, nil
}

func (r *ModulePostgres) ModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules WHERE id = $1`
	module := &models.Module{}
	if err := scanModule(r.db.QueryRow(ctx, query, id), module); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrModuleNotFound
		}
		return nil, err
	}
	return module, nil
}

func (r *ModulePostgres) ModulesByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Module, error) {
	query := `
		SELECT ` + moduleColumns + `
		  FROM modules
		 WHERE course_id = $1
		 ORDER BY module_order
	`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		var m models.Module
		if err := scanModule(rows, &m); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (r *ModulePostgres) UpdateModule(ctx context.Context, id uuid.UUID, upd models.ModuleUpdate) (*models.Module, error) {
	query := `
		UPDATE modules
		   SET title       = COALESCE($2, title),
		       description = COALESCE($3, description),
		       updated_at  = NOW()
		 WHERE id = $1
		RETURNING ` + moduleColumns
	module := &models.Module{}
	if err := scanModule(r.db.QueryRow(ctx, query, id, upd.Title, upd.Description), module); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to update module: %w", err)
	}
	return module, nil
}

func (r *ModulePostgres) MaxModuleOrder(ctx context.Context, courseID uuid.UUID) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(module_order), 0) FROM modules WHERE course_id = $1`
	if err := r.db.QueryRow(ctx, query, courseID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max module order: %w", err)
	}
	return max, nil
}

// DeleteModule removes the module and its lessons and closes the order gap
// among the remaining siblings, all in one transaction.
func (r *ModulePostgres) DeleteModule(ctx context.Context, moduleID, courseID uuid.UUID, moduleOrder int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM lessons WHERE module_id = $1`, moduleID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM modules WHERE id = $1`, moduleID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		UPDATE modules SET module_order = module_order - 1
		 WHERE course_id = $1 AND module_order > $2
	`, courseID, moduleOrder); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReorderModules applies the given {id, order} tuples in one transaction.
// Last write wins; duplicate or gapped orders are accepted as sent.
func (r *ModulePostgres) ReorderModules(ctx context.Context, courseID uuid.UUID, changes []models.OrderChange) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE modules SET module_order = $3, updated_at = NOW()
		 WHERE id = $1 AND course_id = $2
	`
	for _, ch := range changes {
		if _, err := tx.Exec(ctx, query, ch.ID, courseID, ch.Order); err != nil {
			return fmt.Errorf("failed to reorder module %s: %w", ch.ID, err)
		}
	}

	return tx.Commit(ctx)
}
