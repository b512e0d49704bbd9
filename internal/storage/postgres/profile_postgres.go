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

type ProfilePostgres struct {
	db *pgxpool.Pool
}

func NewProfilePostgres(db *pgxpool.Pool) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

func (r *ProfilePostgres) CreateProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query := `
		INSERT INTO profiles (id, email, username, full_name, password, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		profile.ID, profile.Email, profile.Username, profile.FullName,
		profile.Password, profile.IsAdmin, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == uniqueViolation {
			return nil, app_errors.ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfilePostgres) ProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, email, username, full_name, password, is_admin, created_at, updated_at
		  FROM profiles
		 WHERE id = $1
	`
	var p models.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.Username, &p.FullName, &p.Password, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfilePostgres) ProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `
		SELECT id, email, username, full_name, password, is_admin, created_at, updated_at
		  FROM profiles
		 WHERE email = $1
	`
	var p models.Profile
	err := r.db.QueryRow(ctx, query, email).Scan(
		&p.ID, &p.Email, &p.Username, &p.FullName, &p.Password, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfilePostgres) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Profile, error) {
	query := `
		UPDATE profiles
		   SET username   = COALESCE($2, username),
		       full_name  = COALESCE($3, full_name),
		       updated_at = NOW()
		 WHERE id = $1
		RETURNING id, email, username, full_name, password, is_admin, created_at, updated_at
	`
	var p models.Profile
	err := r.db.QueryRow(ctx, query, id, upd.Username, upd.FullName).Scan(
		&p.ID, &p.Email, &p.Username, &p.FullName, &p.Password, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p, nil
}

func (r *ProfilePostgres) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE profiles SET password = $2, updated_at = NOW() WHERE id = $1`, id, hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrUserNotFound
	}
	return nil
}

// IsAdmin reads the admin flag for the given user. Callers treat any
// error as "not admin".
func (r *ProfilePostgres) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRow(ctx, `SELECT is_admin FROM profiles WHERE id = $1`, id).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, app_errors.ErrUserNotFound
		}
		return false, err
	}
	return isAdmin, nil
}

func (r *ProfilePostgres) CountProfiles(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}
