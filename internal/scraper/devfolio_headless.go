package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hackmate/internal/database"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

// DevfolioScraper discovers hackathons from the Devfolio explore page.
// The page is client-rendered, so it drives a headless browser instead
// of plain HTTP.
type DevfolioScraper struct {
	db          database.DB
	siteBase    string
	invalidator RecommendationInvalidator
}

func NewDevfolioScraper(db database.DB) *DevfolioScraper {
	return &DevfolioScraper{db: db, siteBase: "https://devfolio.co"}
}

// SetInvalidator registers the cache to flush after a successful run.
func (s *DevfolioScraper) SetInvalidator(inv RecommendationInvalidator) {
	s.invalidator = inv
}

func (s *DevfolioScraper) Scrape(ctx context.Context, limit int, workers int) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("nil scraper/db")
	}
	if limit <= 0 {
		limit = 30
	}

	sourceID, err := ensureEventSource(ctx, s.db, "Devfolio", s.siteBase)
	if err != nil {
		return err
	}
	creatorID, err := ensureScraperUser(ctx, s.db)
	if err != nil {
		return err
	}

	runID, _ := createScrapeRun(ctx, s.db, sourceID)
	if runID != uuid.Nil {
		defer func() {
			_ = finishScrapeRun(context.Background(), s.db, runID, "finished")
		}()
	}

	events, err := s.fetchHackathonsHeadless(ctx, limit)
	if err != nil {
		_ = logScrape(ctx, s.db, runID, "error", fmt.Sprintf("devfolio explore: %v", err))
		return err
	}

	pool := NewWorkerPool(workers, workers*2)
	results := pool.Run(ctx)

	for _, ev := range events {
		ev := ev
		pool.Submit(func(ctx context.Context) error {
			return insertEventPost(ctx, s.db, creatorID, runID, ev)
		})
	}

	pool.Close()
	for res := range results {
		if res.Err != nil {
			_ = logScrape(ctx, s.db, runID, "error", fmt.Sprintf("devfolio item: %v", res.Err))
		}
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateAllRecommendations(ctx); err != nil {
			_ = logScrape(ctx, s.db, runID, "warn", fmt.Sprintf("recommendation cache flush: %v", err))
		}
	}
	return nil
}

func (s *DevfolioScraper) fetchHackathonsHeadless(ctx context.Context, limit int) ([]eventPostInput, error) {
	base := strings.TrimRight(s.siteBase, "/")
	pageURL := base + "/hackathons"

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"),
		)...,
	)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	reqCtx, reqCancel := context.WithTimeout(browserCtx, 25*time.Second)
	defer reqCancel()

	var hrefs []string
	err := chromedp.Run(reqCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.EvaluateAsDevTools(`Array.from(document.querySelectorAll('a[href]'))
			.map(a => a.getAttribute('href'))
			.filter(h => h && h.includes('.devfolio.co'))`, &hrefs),
	)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	out := make([]eventPostInput, 0, limit)
	for _, h := range hrefs {
		if len(out) >= limit {
			break
		}
		name := eventNameFromDevfolioURL(h)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, eventPostInput{
			EventName: name,
			EventType: "Hackathon",
			Venue:     "Online",
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no hackathon urls found (headless)")
	}
	return out, nil
}

// eventNameFromDevfolioURL turns "https://cityhack.devfolio.co" into
// "Cityhack".
func eventNameFromDevfolioURL(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimPrefix(h, "https://")
	h = strings.TrimPrefix(h, "http://")
	i := strings.Index(h, ".devfolio.co")
	if i <= 0 {
		return ""
	}
	slug := h[:i]
	if slug == "" || strings.ContainsAny(slug, "/?#") {
		return ""
	}
	slug = strings.ReplaceAll(slug, "-", " ")
	return strings.ToUpper(slug[:1]) + slug[1:]
}
