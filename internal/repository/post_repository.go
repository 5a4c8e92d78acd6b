package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hackmate/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	ListFeed(ctx context.Context, viewerGender string, limit, offset int) ([]FeedPost, error)
	GetMeta(ctx context.Context, postID uuid.UUID) (PostMeta, error)
	CountTeammates(ctx context.Context, postID uuid.UUID) (int, error)
	CloseApplications(ctx context.Context, postID uuid.UUID) error
	ExistsByEventAndCreator(ctx context.Context, eventName string, creatorID uuid.UUID) (bool, error)
	Create(ctx context.Context, p NewPost) (uuid.UUID, error)
}

type FeedPost struct {
	ID                uuid.UUID
	CreatorID         uuid.UUID
	CreatorName       string
	EventName         string
	Description       string
	Idea              string
	EventType         string
	GenderRequirement string
	TeamSize          int
	Location          string
	RequiredSkills    []string
	CreatedAt         time.Time
}

type PostMeta struct {
	ID                 uuid.UUID
	CreatorID          uuid.UUID
	GenderRequirement  string
	TeamSize           int
	ApplicationsClosed bool
}

type NewPost struct {
	CreatorID         uuid.UUID
	EventName         string
	Description       string
	Idea              string
	EventType         string
	GenderRequirement string
	TeamSize          int
	Location          string
	Lat               *float64
	Lon               *float64
}

type PostgresPostRepository struct {
	db database.DB
}

func NewPostgresPostRepository(db database.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// ListFeed returns open posts newest first, hiding posts whose gender
// requirement excludes the viewer. An empty viewerGender sees only
// unrestricted posts.
func (r *PostgresPostRepository) ListFeed(ctx context.Context, viewerGender string, limit, offset int) ([]FeedPost, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.creator_id, COALESCE(u.name, ''), COALESCE(p.event_name, ''),
		        COALESCE(p.description, ''), COALESCE(p.idea, ''), COALESCE(p.event_type, ''),
		        COALESCE(p.gender_requirement, ''), COALESCE(p.team_size, 0),
		        COALESCE(p.location, ''), p.created_at
		 FROM posts p
		 JOIN users u ON u.id = p.creator_id
		 WHERE p.applications_closed = FALSE
		   AND (p.gender_requirement IS NULL
		        OR p.gender_requirement = ''
		        OR lower(p.gender_requirement) = 'any'
		        OR lower(p.gender_requirement) = lower($1))
		 ORDER BY p.created_at DESC
		 LIMIT $2 OFFSET $3`,
		viewerGender, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FeedPost, 0)
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var p FeedPost
		if err := rows.Scan(
			&p.ID, &p.CreatorID, &p.CreatorName, &p.EventName,
			&p.Description, &p.Idea, &p.EventType,
			&p.GenderRequirement, &p.TeamSize, &p.Location, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	required, err := loadRequiredSkills(ctx, r.db)
	if err != nil {
		return nil, err
	}
	for postID, names := range required {
		if i, ok := index[postID]; ok {
			out[i].RequiredSkills = names
		}
	}
	return out, nil
}

func (r *PostgresPostRepository) GetMeta(ctx context.Context, postID uuid.UUID) (PostMeta, error) {
	var m PostMeta
	row := r.db.QueryRow(ctx,
		`SELECT id, creator_id, COALESCE(gender_requirement, ''), COALESCE(team_size, 0), applications_closed
		 FROM posts
		 WHERE id = $1`,
		postID,
	)
	if err := row.Scan(&m.ID, &m.CreatorID, &m.GenderRequirement, &m.TeamSize, &m.ApplicationsClosed); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return PostMeta{}, ErrPostNotFound
		}
		return PostMeta{}, err
	}
	return m, nil
}

func (r *PostgresPostRepository) CountTeammates(ctx context.Context, postID uuid.UUID) (int, error) {
	var n int
	row := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM teammates WHERE post_id = $1`, postID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresPostRepository) CloseApplications(ctx context.Context, postID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE posts SET applications_closed = TRUE WHERE id = $1`, postID)
	return err
}

func (r *PostgresPostRepository) ExistsByEventAndCreator(ctx context.Context, eventName string, creatorID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE lower(event_name) = lower($1) AND creator_id = $2)`,
		eventName, creatorID,
	)
	if err := row.Scan(&exists); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *PostgresPostRepository) Create(ctx context.Context, p NewPost) (uuid.UUID, error) {
	id := uuid.New()
	var lat, lon any
	if p.Lat != nil && p.Lon != nil {
		lat, lon = *p.Lat, *p.Lon
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO posts
		   (id, creator_id, event_name, description, idea, event_type,
		    gender_requirement, team_size, location, lat, lon, applications_closed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, now())`,
		id, p.CreatorID, p.EventName, p.Description, p.Idea, p.EventType,
		p.GenderRequirement, p.TeamSize, p.Location, lat, lon,
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
