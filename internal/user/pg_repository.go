package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB mirrors the pool subset used by the appointment repository.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var doctorID *uuid.UUID

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&doctorID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	u.DoctorID = doctorID
	return &u, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, role, medecin_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) List(ctx context.Context, limit, offset int) ([]User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, role, medecin_id, created_at, updated_at
		FROM users
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
