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
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("forbidden")
)

type RankedApplicantItem struct {
	UserID     uuid.UUID `json:"user_id"`
	Bio        string    `json:"bio"`
	Location   string    `json:"location"`
	Skills     []string  `json:"skills"`
	Score      float64   `json:"score"`
	SkillScore float64   `json:"skill_score"`
	GeoScore   float64   `json:"geo_score"`
}

type ApplicantRecommendationUsecase interface {
	GetForPost(ctx context.Context, requesterID, postID uuid.UUID, limit int) ([]RankedApplicantItem, error)
}

type ApplicantRecommendation struct {
	snapshots repository.SnapshotRepository
	engine    *recommend.Engine
	cache     RecommendationCache
	ttl       time.Duration
	logger    *log.Logger
}

func NewApplicantRecommendationUsecase(snapshots repository.SnapshotRepository, engine *recommend.Engine, c RecommendationCache, ttl time.Duration, logger *log.Logger) *ApplicantRecommendation {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ApplicantRecommendation{snapshots: snapshots, engine: engine, cache: c, ttl: ttl, logger: logger}
}

// GetForPost ranks candidate teammates for a post. Only the post's
// creator may ask.
func (u *ApplicantRecommendation) GetForPost(ctx context.Context, requesterID, postID uuid.UUID, limit int) ([]RankedApplicantItem, error) {
	if requesterID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if postID == uuid.Nil {
		return nil, ErrPostNotFound
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	post, users, err := u.snapshots.ForPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		if u.logger != nil {
			u.logger.Printf("[Recs] snapshot load failed post=%s err=%v", postID, err)
		}
		return nil, ErrInternal
	}
	if post.CreatorID != requesterID {
		return nil, ErrForbidden
	}

	key := cache.ApplicantRecommendationKey(postID, limit)
	if u.cache != nil {
		var cached []RankedApplicantItem
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	ranked := u.engine.RecommendApplicants(post, users, limit)

	out := make([]RankedApplicantItem, 0, len(ranked))
	for _, ru := range ranked {
		out = append(out, RankedApplicantItem{
			UserID:     ru.User.ID,
			Bio:        ru.User.Bio,
			Location:   ru.User.Location,
			Skills:     ru.User.SkillNames(),
			Score:      ru.Score,
			SkillScore: ru.SkillScore,
			GeoScore:   ru.GeoScore,
		})
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, out, u.ttl); err != nil && u.logger != nil {
			u.logger.Printf("[Recs] cache write failed key=%s err=%v", key, err)
		}
	}
	return out, nil
}
