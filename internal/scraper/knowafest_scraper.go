package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hackmate/internal/database"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
)

const knowafestDefaultCategory = "/explore/category/Hackathons_in_Chennai_2025"

// KnowafestScraper pulls upcoming fests from knowafest.com category
// pages and turns each row into an open event post.
type KnowafestScraper struct {
	db          database.DB
	baseURL     string
	allowedHost string
	invalidator RecommendationInvalidator
}

func NewKnowafestScraper(db database.DB) *KnowafestScraper {
	return NewKnowafestScraperWithBaseURL(db, "https://www.knowafest.com")
}

func NewKnowafestScraperWithBaseURL(db database.DB, baseURL string) *KnowafestScraper {
	s := &KnowafestScraper{db: db, baseURL: strings.TrimSpace(baseURL)}
	if s.baseURL == "" {
		s.baseURL = "https://www.knowafest.com"
	}
	s.allowedHost = hostFromBaseURL(s.baseURL, "www.knowafest.com")
	return s
}

// SetInvalidator registers the cache to flush after a successful run.
func (s *KnowafestScraper) SetInvalidator(inv RecommendationInvalidator) {
	s.invalidator = inv
}

func (s *KnowafestScraper) Scrape(ctx context.Context, categoryPath string, workers int) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("nil scraper/db")
	}
	if strings.TrimSpace(categoryPath) == "" {
		categoryPath = knowafestDefaultCategory
	}

	sourceID, err := ensureEventSource(ctx, s.db, "Knowafest", s.baseURL)
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

	events, err := s.scrapeCategoryPage(ctx, strings.TrimRight(s.baseURL, "/")+categoryPath)
	if err != nil {
		_ = logScrape(ctx, s.db, runID, "error", fmt.Sprintf("knowafest category %s: %v", categoryPath, err))
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
			_ = logScrape(ctx, s.db, runID, "error", fmt.Sprintf("knowafest item: %v", res.Err))
		}
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateAllRecommendations(ctx); err != nil {
			_ = logScrape(ctx, s.db, runID, "warn", fmt.Sprintf("recommendation cache flush: %v", err))
		}
	}
	return nil
}

// scrapeCategoryPage reads the fest listing table. Each data row holds
// start date, fest name, fest type and college/city in that order.
func (s *KnowafestScraper) scrapeCategoryPage(ctx context.Context, pageURL string) ([]eventPostInput, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(s.allowedHost),
	)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2, RandomDelay: 500 * time.Millisecond, Delay: 300 * time.Millisecond})

	events := make([]eventPostInput, 0)

	c.OnHTML("table tr", func(e *colly.HTMLElement) {
		cells := e.ChildTexts("td")
		if len(cells) < 4 {
			// header or malformed row
			return
		}
		ev := eventPostInput{
			StartDate: strings.TrimSpace(cells[0]),
			EventName: strings.TrimSpace(cells[1]),
			EventType: strings.TrimSpace(cells[2]),
			Venue:     strings.TrimSpace(cells[3]),
		}
		if ev.EventName == "" {
			return
		}
		events = append(events, ev)
	})

	var reqErr error
	c.OnError(func(r *colly.Response, err error) {
		reqErr = err
	})

	c.OnRequest(func(r *colly.Request) {
		for k, v := range httpHeaders() {
			r.Headers.Set(k, v)
		}
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	c.Wait()
	if reqErr != nil {
		return nil, reqErr
	}

	dedup := map[string]struct{}{}
	out := make([]eventPostInput, 0, len(events))
	for _, ev := range events {
		key := strings.ToLower(ev.EventName)
		if _, ok := dedup[key]; ok {
			continue
		}
		dedup[key] = struct{}{}
		out = append(out, ev)
	}
	return out, nil
}
