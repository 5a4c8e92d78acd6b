package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"hackmate/internal/database"
	"hackmate/internal/domain/recommend"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

// SnapshotRepository loads everything the ranking engine needs in a
// single transaction, so the scores are computed against one consistent
// view of the data.
type SnapshotRepository interface {
	ForUser(ctx context.Context, userID uuid.UUID) (recommend.UserSnapshot, []recommend.PostSnapshot, map[string]int, error)
	ForPost(ctx context.Context, postID uuid.UUID) (recommend.PostSnapshot, []recommend.UserSnapshot, error)
}

type PostgresSnapshotRepository struct {
	db database.DB
}

func NewPostgresSnapshotRepository(db database.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

func (r *PostgresSnapshotRepository) ForUser(ctx context.Context, userID uuid.UUID) (recommend.UserSnapshot, []recommend.PostSnapshot, map[string]int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return recommend.UserSnapshot{}, nil, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	user, err := loadUser(ctx, tx, userID)
	if err != nil {
		return recommend.UserSnapshot{}, nil, nil, err
	}

	user.Skills, err = loadUserSkills(ctx, tx, userID)
	if err != nil {
		return recommend.UserSnapshot{}, nil, nil, err
	}

	user.AppliedPostIDs, err = loadPostIDs(ctx, tx,
		`SELECT post_id FROM applications WHERE user_id = $1`, userID)
	if err != nil {
		return recommend.UserSnapshot{}, nil, nil, err
	}

	user.TeammatePostIDs, err = loadPostIDs(ctx, tx,
		`SELECT post_id FROM teammates WHERE user_id = $1`, userID)
	if err != nil {
		return recommend.UserSnapshot{}, nil, nil, err
	}

	posts, err := loadAllPosts(ctx, tx)
	if err != nil {
		return recommend.UserSnapshot{}, nil, nil, err
	}

	usage, err := loadSkillUsage(ctx, tx)
	if err != nil {
		return recommend.UserSnapshot{}, nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return recommend.UserSnapshot{}, nil, nil, err
	}
	return user, posts, usage, nil
}

func (r *PostgresSnapshotRepository) ForPost(ctx context.Context, postID uuid.UUID) (recommend.PostSnapshot, []recommend.UserSnapshot, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return recommend.PostSnapshot{}, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	post, err := loadPost(ctx, tx, postID)
	if err != nil {
		return recommend.PostSnapshot{}, nil, err
	}

	users, err := loadAllUsers(ctx, tx)
	if err != nil {
		return recommend.PostSnapshot{}, nil, err
	}

	applicants, err := loadUserIDs(ctx, tx,
		`SELECT user_id FROM applications WHERE post_id = $1`, postID)
	if err != nil {
		return recommend.PostSnapshot{}, nil, err
	}
	teammates, err := loadUserIDs(ctx, tx,
		`SELECT user_id FROM teammates WHERE post_id = $1`, postID)
	if err != nil {
		return recommend.PostSnapshot{}, nil, err
	}

	for i := range users {
		if applicants[users[i].ID] {
			users[i].AppliedPostIDs = []uuid.UUID{postID}
		}
		if teammates[users[i].ID] {
			users[i].TeammatePostIDs = []uuid.UUID{postID}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return recommend.PostSnapshot{}, nil, err
	}
	return post, users, nil
}

func loadUser(ctx context.Context, q database.Querier, userID uuid.UUID) (recommend.UserSnapshot, error) {
	var (
		u        recommend.UserSnapshot
		lat, lon sql.NullFloat64
	)
	row := q.QueryRow(ctx,
		`SELECT id, COALESCE(gender, ''), COALESCE(bio, ''), COALESCE(location, ''), lat, lon
		 FROM users
		 WHERE id = $1`,
		userID,
	)
	if err := row.Scan(&u.ID, &u.Gender, &u.Bio, &u.Location, &lat, &lon); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return recommend.UserSnapshot{}, ErrUserNotFound
		}
		return recommend.UserSnapshot{}, err
	}
	u.Coords = coordsFrom(lat, lon)
	return u, nil
}

func loadUserSkills(ctx context.Context, q database.Querier, userID uuid.UUID) ([]recommend.Skill, error) {
	rows, err := q.Query(ctx,
		`SELECT s.name, us.level, us.verified
		 FROM user_skills us
		 JOIN skills s ON s.id = us.skill_id
		 WHERE us.user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recommend.Skill, 0)
	for rows.Next() {
		var sk recommend.Skill
		if err := rows.Scan(&sk.Name, &sk.Level, &sk.Verified); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func loadPostIDs(ctx context.Context, q database.Querier, query string, arg any) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func loadUserIDs(ctx context.Context, q database.Querier, query string, arg any) (map[uuid.UUID]bool, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func loadAllPosts(ctx context.Context, q database.Querier) ([]recommend.PostSnapshot, error) {
	rows, err := q.Query(ctx,
		`SELECT id, creator_id, COALESCE(event_name, ''), COALESCE(description, ''), COALESCE(idea, ''),
		        COALESCE(event_type, ''), COALESCE(gender_requirement, ''), COALESCE(team_size, 0),
		        COALESCE(location, ''), lat, lon, applications_closed, created_at
		 FROM posts`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recommend.PostSnapshot, 0)
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			p        recommend.PostSnapshot
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(
			&p.ID, &p.CreatorID, &p.EventName, &p.Description, &p.Idea,
			&p.EventType, &p.GenderRequirement, &p.TeamSize,
			&p.Location, &lat, &lon, &p.ApplicationsClosed, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		p.Coords = coordsFrom(lat, lon)
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	required, err := loadRequiredSkills(ctx, q)
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

func loadRequiredSkills(ctx context.Context, q database.Querier) (map[uuid.UUID][]string, error) {
	rows, err := q.Query(ctx,
		`SELECT ps.post_id, s.name
		 FROM post_skills ps
		 JOIN skills s ON s.id = ps.skill_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uuid.UUID][]string{}
	for rows.Next() {
		var (
			postID uuid.UUID
			name   string
		)
		if err := rows.Scan(&postID, &name); err != nil {
			return nil, err
		}
		out[postID] = append(out[postID], name)
	}
	return out, rows.Err()
}

func loadPost(ctx context.Context, q database.Querier, postID uuid.UUID) (recommend.PostSnapshot, error) {
	var (
		p        recommend.PostSnapshot
		lat, lon sql.NullFloat64
	)
	row := q.QueryRow(ctx,
		`SELECT id, creator_id, COALESCE(event_name, ''), COALESCE(description, ''), COALESCE(idea, ''),
		        COALESCE(event_type, ''), COALESCE(gender_requirement, ''), COALESCE(team_size, 0),
		        COALESCE(location, ''), lat, lon, applications_closed, created_at
		 FROM posts
		 WHERE id = $1`,
		postID,
	)
	if err := row.Scan(
		&p.ID, &p.CreatorID, &p.EventName, &p.Description, &p.Idea,
		&p.EventType, &p.GenderRequirement, &p.TeamSize,
		&p.Location, &lat, &lon, &p.ApplicationsClosed, &p.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return recommend.PostSnapshot{}, ErrPostNotFound
		}
		return recommend.PostSnapshot{}, err
	}
	p.Coords = coordsFrom(lat, lon)

	rows, err := q.Query(ctx,
		`SELECT s.name
		 FROM post_skills ps
		 JOIN skills s ON s.id = ps.skill_id
		 WHERE ps.post_id = $1`,
		postID,
	)
	if err != nil {
		return recommend.PostSnapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return recommend.PostSnapshot{}, err
		}
		p.RequiredSkills = append(p.RequiredSkills, name)
	}
	return p, rows.Err()
}

func loadAllUsers(ctx context.Context, q database.Querier) ([]recommend.UserSnapshot, error) {
	rows, err := q.Query(ctx,
		`SELECT id, COALESCE(gender, ''), COALESCE(bio, ''), COALESCE(location, ''), lat, lon
		 FROM users`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recommend.UserSnapshot, 0)
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			u        recommend.UserSnapshot
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&u.ID, &u.Gender, &u.Bio, &u.Location, &lat, &lon); err != nil {
			return nil, err
		}
		u.Coords = coordsFrom(lat, lon)
		index[u.ID] = len(out)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skillRows, err := q.Query(ctx,
		`SELECT us.user_id, s.name, us.level, us.verified
		 FROM user_skills us
		 JOIN skills s ON s.id = us.skill_id`,
	)
	if err != nil {
		return nil, err
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var (
			userID uuid.UUID
			sk     recommend.Skill
		)
		if err := skillRows.Scan(&userID, &sk.Name, &sk.Level, &sk.Verified); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			out[i].Skills = append(out[i].Skills, sk)
		}
	}
	return out, skillRows.Err()
}

// loadSkillUsage counts how many posts require each skill, keyed by the
// lowercased skill name. Skills absent from the map are rare.
func loadSkillUsage(ctx context.Context, q database.Querier) (map[string]int, error) {
	rows, err := q.Query(ctx,
		`SELECT lower(s.name), COUNT(DISTINCT ps.post_id)
		 FROM post_skills ps
		 JOIN skills s ON s.id = ps.skill_id
		 GROUP BY lower(s.name)`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[strings.TrimSpace(name)] = n
	}
	return out, rows.Err()
}

func coordsFrom(lat, lon sql.NullFloat64) *recommend.Coordinates {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &recommend.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
}
