package db

import (
	"context"
	"errors"
	"fmt"

	"foodbridge/internal/auth-service/core/domain/models"
	"foodbridge/internal/auth-service/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type AuthRepo struct {
	db *DB
}

func NewAuthRepo(db *DB) *AuthRepo {
	return &AuthRepo{
		db: db,
	}
}

const uniqueViolation = "23505"

func (ar *AuthRepo) Create(ctx context.Context, user models.User) (int64, error) {
	q := `INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id`

	var id int64
	row := ar.db.conn.QueryRow(ctx, q, user.Username, user.Email, user.PasswordHash, user.Role)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ports.ErrEmailRegistered
		}
		return 0, fmt.Errorf("failed to insert user: %v", err)
	}

	return id, nil
}

func (ar *AuthRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	q := `
		SELECT
			u.id,
			u.username,
			u.email,
			u.password_hash,
			u.role,
			u.created_at
		FROM
			users u
		WHERE
			u.email = $1
	`

	var u models.User
	err := ar.db.conn.QueryRow(ctx, q, email).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ports.ErrUnknownEmail
		}
		return models.User{}, err
	}

	return u, nil
}
