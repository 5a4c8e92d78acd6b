package seeder

import (
	"context"
	"fmt"

	"hackmate/internal/database"
)

type EventSourcesSeeder struct{}

func (EventSourcesSeeder) Name() string { return "event_sources" }

func (EventSourcesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "event_sources", "id", "name", "base_url", "created_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		Name    string
		BaseURL string
	}{
		{Name: "Knowafest", BaseURL: "https://www.knowafest.com"},
		{Name: "Devfolio", BaseURL: "https://devfolio.co"},
	}

	for _, it := range items {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO event_sources (id, name, base_url) VALUES (gen_random_uuid(), $1, $2) ON CONFLICT (name) DO NOTHING`,
			it.Name,
			it.BaseURL,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
