package repository

import (
	"context"
	"database/sql"
	"errors"

	"hackmate/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Gender       string
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	EnsureSystemUser(ctx context.Context, name, email string) (uuid.UUID, error)
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, COALESCE(name, ''), email, password_hash, COALESCE(gender, '')
		 FROM users
		 WHERE lower(email) = lower($1)`,
		email,
	)
	return scanUser(row)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, COALESCE(name, ''), email, password_hash, COALESCE(gender, '')
		 FROM users
		 WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// EnsureSystemUser upserts the account that owns scraped event posts.
func (r *PostgresUserRepository) EnsureSystemUser(ctx context.Context, name, email string) (uuid.UUID, error) {
	var id uuid.UUID
	row := r.db.QueryRow(ctx, `SELECT id FROM users WHERE lower(email) = lower($1)`, email)
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows && !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, err
	}

	id = uuid.New()
	_, err = r.db.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, '', now())
		 ON CONFLICT (email) DO NOTHING`,
		id, name, email,
	)
	if err != nil {
		return uuid.Nil, err
	}

	// A concurrent insert may have won the conflict; read back the id.
	row = r.db.QueryRow(ctx, `SELECT id FROM users WHERE lower(email) = lower($1)`, email)
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func scanUser(row database.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Gender); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}
