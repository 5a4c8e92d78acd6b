package main

import (
	"context"
	"flag"
	"log"
	"time"

	"hackmate/internal/app"
	"hackmate/internal/config"
	"hackmate/internal/database/migration"
	"hackmate/internal/scraper"
)

func main() {
	source := flag.String("source", "knowafest", "event source: knowafest, devfolio or all")
	category := flag.String("category", "", "knowafest category path")
	limit := flag.Int("limit", 30, "max events per headless source")
	workers := flag.Int("workers", 4, "concurrent inserts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer migCancel()
	r := migration.Runner{Dir: "migrations"}
	if err := r.Run(migCtx, c.DB.SQLDB()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Scraped posts change the corpus, so cached rankings go stale for
	// every user; the scrapers flush them after a successful run.
	knowafest := scraper.NewKnowafestScraper(c.DB)
	knowafest.SetInvalidator(c.Cache)
	devfolio := scraper.NewDevfolioScraper(c.DB)
	devfolio.SetInvalidator(c.Cache)

	switch *source {
	case "knowafest":
		if err := knowafest.Scrape(ctx, *category, *workers); err != nil {
			log.Fatalf("knowafest scrape failed: %v", err)
		}
	case "devfolio":
		if err := devfolio.Scrape(ctx, *limit, *workers); err != nil {
			log.Fatalf("devfolio scrape failed: %v", err)
		}
	case "all":
		if err := knowafest.Scrape(ctx, *category, *workers); err != nil {
			log.Printf("knowafest scrape failed: %v", err)
		}
		if err := devfolio.Scrape(ctx, *limit, *workers); err != nil {
			log.Printf("devfolio scrape failed: %v", err)
		}
	default:
		log.Fatalf("unknown source %q", *source)
	}

	log.Printf("scrape finished source=%s", *source)
}
