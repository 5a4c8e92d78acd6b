package scraper

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"hackmate/internal/database"

	"github.com/google/uuid"
)

const (
	// System account that owns scraped event posts.
	scraperUserName  = "HackMate Events"
	scraperUserEmail = "events@hackmate.local"
)

// RecommendationInvalidator drops cached rankings after a scrape grows
// the post pool; new posts shift the text corpus for every user.
type RecommendationInvalidator interface {
	InvalidateAllRecommendations(ctx context.Context) error
}

type eventPostInput struct {
	EventName string
	EventType string
	Venue     string
	StartDate string
}

func ensureEventSource(ctx context.Context, db database.DB, name string, baseURL string) (uuid.UUID, error) {
	if db == nil {
		return uuid.Nil, fmt.Errorf("nil db")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("empty source name")
	}
	baseURL = strings.TrimSpace(baseURL)

	_, _ = db.Exec(ctx,
		`INSERT INTO event_sources (id, name, base_url) VALUES (gen_random_uuid(), $1, $2) ON CONFLICT (name) DO NOTHING`,
		name,
		nullableText(baseURL),
	)

	row := db.QueryRow(ctx, `SELECT id FROM event_sources WHERE name = $1 LIMIT 1`, name)
	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func ensureScraperUser(ctx context.Context, db database.DB) (uuid.UUID, error) {
	if db == nil {
		return uuid.Nil, fmt.Errorf("nil db")
	}

	_, _ = db.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES (gen_random_uuid(), $1, $2, '', now())
		 ON CONFLICT (email) DO NOTHING`,
		scraperUserName, scraperUserEmail,
	)

	row := db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1 LIMIT 1`, scraperUserEmail)
	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func createScrapeRun(ctx context.Context, db database.DB, sourceID uuid.UUID) (uuid.UUID, error) {
	if db == nil {
		return uuid.Nil, fmt.Errorf("nil db")
	}
	id := uuid.New()
	_, err := db.Exec(ctx,
		`INSERT INTO scrape_runs (id, source_id, started_at, status) VALUES ($1,$2,$3,$4)`,
		id, sourceID, time.Now().UTC(), "running",
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func finishScrapeRun(ctx context.Context, db database.DB, runID uuid.UUID, status string) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if runID == uuid.Nil {
		return nil
	}
	_, err := db.Exec(ctx,
		`UPDATE scrape_runs SET finished_at = $2, status = $3 WHERE id = $1`,
		runID, time.Now().UTC(), strings.TrimSpace(status),
	)
	return err
}

func logScrape(ctx context.Context, db database.DB, runID uuid.UUID, level string, message string) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if runID == uuid.Nil {
		return nil
	}
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	_, err := db.Exec(ctx,
		`INSERT INTO scrape_logs (id, scrape_run_id, level, message) VALUES ($1,$2,$3,$4)`,
		uuid.New(), runID, level, message,
	)
	return err
}

// insertEventPost creates an open post for a scraped event. A post the
// scraper account already made for the same event name is left alone.
func insertEventPost(ctx context.Context, db database.DB, creatorID uuid.UUID, runID uuid.UUID, in eventPostInput) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	if creatorID == uuid.Nil {
		return fmt.Errorf("nil creator_id")
	}

	name := strings.TrimSpace(in.EventName)
	if name == "" {
		return fmt.Errorf("empty event name")
	}

	var exists bool
	row := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM posts WHERE lower(event_name) = lower($1) AND creator_id = $2)`,
		name, creatorID,
	)
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	description := fmt.Sprintf(
		"Type: %s. Venue: %s. Event Date: %s.",
		strings.TrimSpace(in.EventType),
		strings.TrimSpace(in.Venue),
		strings.TrimSpace(in.StartDate),
	)

	_, err := db.Exec(ctx,
		`INSERT INTO posts
		   (id, creator_id, event_name, description, idea, event_type,
		    gender_requirement, team_size, location, applications_closed, created_at)
		 VALUES ($1, $2, $3, $4, '', $5, '', 0, $6, FALSE, now())`,
		uuid.New(), creatorID, name, description,
		strings.TrimSpace(in.EventType), strings.TrimSpace(in.Venue),
	)
	if err != nil {
		_ = logScrape(ctx, db, runID, "error", fmt.Sprintf("insert event post name=%s: %v", name, err))
		return err
	}
	_ = logScrape(ctx, db, runID, "info", fmt.Sprintf("event post created name=%s", name))
	return nil
}

func httpHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "HackMateScraper/0.1",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

func hostFromBaseURL(base string, fallback string) string {
	base = strings.TrimSpace(base)
	u, err := url.Parse(base)
	if err != nil {
		return fallback
	}
	host := u.Host
	if host == "" {
		return fallback
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func nullableText(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
