package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"hackmate/internal/domain/recommend"
	"hackmate/internal/infrastructure/cache"
	"hackmate/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserNotFound = errors.New("user not found")
	ErrInternal     = errors.New("internal error")
)

// RecommendationCache is the slice of the cache the recommendation flow
// needs; the concrete Redis cache satisfies it.
type RecommendationCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type RankedPostItem struct {
	PostID             uuid.UUID `json:"post_id"`
	EventName          string    `json:"event_name"`
	Description        string    `json:"description"`
	Idea               string    `json:"idea"`
	EventType          string    `json:"event_type"`
	Location           string    `json:"location"`
	RequiredSkills     []string  `json:"required_skills"`
	Score              float64   `json:"score"`
	TextScore          float64   `json:"text_score"`
	SkillScore         float64   `json:"skill_score"`
	LocationScore      float64   `json:"location_score"`
	ComplementaryScore float64   `json:"complementary_score"`
	CreatedAt          time.Time `json:"created_at"`
}

type PostRecommendationUsecase interface {
	GetForUser(ctx context.Context, userID uuid.UUID, limit int) ([]RankedPostItem, error)
}

type PostRecommendation struct {
	snapshots repository.SnapshotRepository
	engine    *recommend.Engine
	cache     RecommendationCache
	ttl       time.Duration
	logger    *log.Logger
}

func NewPostRecommendationUsecase(snapshots repository.SnapshotRepository, engine *recommend.Engine, c RecommendationCache, ttl time.Duration, logger *log.Logger) *PostRecommendation {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PostRecommendation{snapshots: snapshots, engine: engine, cache: c, ttl: ttl, logger: logger}
}

func (u *PostRecommendation) GetForUser(ctx context.Context, userID uuid.UUID, limit int) ([]RankedPostItem, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	key := cache.PostRecommendationKey(userID, limit)
	if u.cache != nil {
		var cached []RankedPostItem
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	user, posts, usage, err := u.snapshots.ForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if u.logger != nil {
			u.logger.Printf("[Recs] snapshot load failed user=%s err=%v", userID, err)
		}
		return nil, ErrInternal
	}

	ranked := u.engine.RecommendPosts(user, posts, usage, limit)

	out := make([]RankedPostItem, 0, len(ranked))
	for _, rp := range ranked {
		out = append(out, RankedPostItem{
			PostID:             rp.Post.ID,
			EventName:          rp.Post.EventName,
			Description:        rp.Post.Description,
			Idea:               rp.Post.Idea,
			EventType:          rp.Post.EventType,
			Location:           rp.Post.Location,
			RequiredSkills:     rp.Post.RequiredSkills,
			Score:              rp.Score,
			TextScore:          rp.Components.Text,
			SkillScore:         rp.Components.Skill,
			LocationScore:      rp.Components.Location,
			ComplementaryScore: rp.Components.Complementary,
			CreatedAt:          rp.Post.CreatedAt,
		})
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, out, u.ttl); err != nil && u.logger != nil {
			u.logger.Printf("[Recs] cache write failed key=%s err=%v", key, err)
		}
	}
	return out, nil
}
