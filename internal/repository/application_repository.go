package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hackmate/internal/database"
	"hackmate/internal/domain/application"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationDecided  = errors.New("application already decided")
)

type Application struct {
	ID        uuid.UUID
	PostID    uuid.UUID
	UserID    uuid.UUID
	Status    application.Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ApplicationRepository interface {
	Create(ctx context.Context, postID, userID uuid.UUID, status application.Status) (Application, error)
	GetByID(ctx context.Context, id uuid.UUID) (Application, error)
	ExistsForPostAndUser(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	ListForPost(ctx context.Context, postID uuid.UUID) ([]Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status application.Status) error
	Accept(ctx context.Context, app Application) error
}

type PostgresApplicationRepository struct {
	db database.DB
}

func NewPostgresApplicationRepository(db database.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, postID, userID uuid.UUID, status application.Status) (Application, error) {
	app := Application{
		ID:        uuid.New(),
		PostID:    postID,
		UserID:    userID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO applications (id, post_id, user_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		app.ID, app.PostID, app.UserID, string(app.Status), app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return Application{}, err
	}
	return app, nil
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (Application, error) {
	var (
		app Application
		st  string
	)
	row := r.db.QueryRow(ctx,
		`SELECT id, post_id, user_id, status, created_at, updated_at
		 FROM applications
		 WHERE id = $1`,
		id,
	)
	if err := row.Scan(&app.ID, &app.PostID, &app.UserID, &st, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrApplicationNotFound
		}
		return Application{}, err
	}
	app.Status = application.Status(st)
	return app, nil
}

func (r *PostgresApplicationRepository) ExistsForPostAndUser(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE post_id = $1 AND user_id = $2)`,
		postID, userID,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresApplicationRepository) ListForPost(ctx context.Context, postID uuid.UUID) ([]Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, post_id, user_id, status, created_at, updated_at
		 FROM applications
		 WHERE post_id = $1
		 ORDER BY created_at ASC`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Application, 0)
	for rows.Next() {
		var (
			app Application
			st  string
		)
		if err := rows.Scan(&app.ID, &app.PostID, &app.UserID, &st, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, err
		}
		app.Status = application.Status(st)
		out = append(out, app)
	}
	return out, rows.Err()
}

// UpdateStatus settles an open application. The status predicate makes
// racing decisions exclusive: the first update wins, any later one
// matches zero rows and reports the conflict.
func (r *PostgresApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status application.Status) error {
	n, err := r.db.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = now()
		 WHERE id = $2 AND status IN ('Pending', 'Invited')`,
		string(status), id,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return decidedOrMissing(ctx, r.db, id)
	}
	return nil
}

// Accept flips the application to Accepted, adds the applicant to the
// team and bumps their level on each skill the post required, all in one
// transaction. A partial acceptance never becomes visible, and the
// status predicate guarantees the side effects run at most once even
// when two accepts race on the same application.
func (r *PostgresApplicationRepository) Accept(ctx context.Context, app Application) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	n, err := tx.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = now()
		 WHERE id = $2 AND status IN ('Pending', 'Invited')`,
		string(application.StatusAccepted), app.ID,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return decidedOrMissing(ctx, tx, app.ID)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO teammates (post_id, user_id, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		app.PostID, app.UserID,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE user_skills
		 SET level = LEAST(level + 1, 5)
		 WHERE user_id = $1
		   AND skill_id IN (SELECT skill_id FROM post_skills WHERE post_id = $2)`,
		app.UserID, app.PostID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// decidedOrMissing resolves a zero-row decision update: either the
// application is gone, or a concurrent decision already settled it.
func decidedOrMissing(ctx context.Context, q database.Querier, id uuid.UUID) error {
	var exists bool
	row := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id)
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrApplicationDecided
	}
	return ErrApplicationNotFound
}
