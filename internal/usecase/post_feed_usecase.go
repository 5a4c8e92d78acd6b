package usecase

import (
	"context"
	"errors"
	"time"

	"hackmate/internal/repository"

	"github.com/google/uuid"
)

type FeedParams struct {
	Limit  int
	Offset int
}

type FeedItem struct {
	PostID            uuid.UUID `json:"post_id"`
	CreatorName       string    `json:"creator_name"`
	EventName         string    `json:"event_name"`
	Description       string    `json:"description"`
	Idea              string    `json:"idea"`
	EventType         string    `json:"event_type"`
	GenderRequirement string    `json:"gender_requirement"`
	TeamSize          int       `json:"team_size"`
	Location          string    `json:"location"`
	RequiredSkills    []string  `json:"required_skills"`
	CreatedAt         time.Time `json:"created_at"`
}

type PostFeedUsecase interface {
	ListFeed(ctx context.Context, viewerID uuid.UUID, params FeedParams) ([]FeedItem, error)
}

type PostFeed struct {
	posts repository.PostRepository
	users repository.UserRepository
}

func NewPostFeedUsecase(posts repository.PostRepository, users repository.UserRepository) *PostFeed {
	return &PostFeed{posts: posts, users: users}
}

// ListFeed returns open posts newest first, filtered to what the viewer
// is allowed to join.
func (u *PostFeed) ListFeed(ctx context.Context, viewerID uuid.UUID, params FeedParams) ([]FeedItem, error) {
	if viewerID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	viewer, err := u.users.GetByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrInternal
	}

	posts, err := u.posts.ListFeed(ctx, viewer.Gender, params.Limit, params.Offset)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]FeedItem, 0, len(posts))
	for _, p := range posts {
		out = append(out, FeedItem{
			PostID:            p.ID,
			CreatorName:       p.CreatorName,
			EventName:         p.EventName,
			Description:       p.Description,
			Idea:              p.Idea,
			EventType:         p.EventType,
			GenderRequirement: p.GenderRequirement,
			TeamSize:          p.TeamSize,
			Location:          p.Location,
			RequiredSkills:    p.RequiredSkills,
			CreatedAt:         p.CreatedAt,
		})
	}
	return out, nil
}
