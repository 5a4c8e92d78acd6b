package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"hackmate/internal/domain/application"
	"hackmate/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("already applied")
	ErrApplicationsClosed  = errors.New("applications closed")
	ErrOwnPost             = errors.New("cannot apply to own post")
	ErrGenderRestricted    = errors.New("post restricted by gender requirement")
	ErrInvalidTransition   = application.ErrInvalidTransition
)

// RecommendationInvalidator drops cached rankings that an application
// event makes stale.
type RecommendationInvalidator interface {
	InvalidateUserRecommendations(ctx context.Context, userID uuid.UUID) error
	InvalidatePostApplicants(ctx context.Context, postID uuid.UUID) error
}

// FeedNotifier fans an event out to connected feed clients.
type FeedNotifier interface {
	NotifyFeedUpdated(event string, postID uuid.UUID)
}

type ApplicationResult struct {
	ID     uuid.UUID          `json:"id"`
	PostID uuid.UUID          `json:"post_id"`
	UserID uuid.UUID          `json:"user_id"`
	Status application.Status `json:"status"`
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, userID, postID uuid.UUID) (ApplicationResult, error)
	Accept(ctx context.Context, actorID, applicationID uuid.UUID) (ApplicationResult, error)
	Reject(ctx context.Context, actorID, applicationID uuid.UUID) (ApplicationResult, error)
}

type ApplicationService struct {
	apps        repository.ApplicationRepository
	posts       repository.PostRepository
	users       repository.UserRepository
	invalidator RecommendationInvalidator
	notifier    FeedNotifier
	logger      *log.Logger
}

func NewApplicationUsecase(
	apps repository.ApplicationRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	invalidator RecommendationInvalidator,
	notifier FeedNotifier,
	logger *log.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps:        apps,
		posts:       posts,
		users:       users,
		invalidator: invalidator,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *ApplicationService) Apply(ctx context.Context, userID, postID uuid.UUID) (ApplicationResult, error) {
	if userID == uuid.Nil {
		return ApplicationResult{}, ErrUnauthorized
	}

	meta, err := s.posts.GetMeta(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ApplicationResult{}, ErrPostNotFound
		}
		return ApplicationResult{}, ErrInternal
	}
	if meta.CreatorID == userID {
		return ApplicationResult{}, ErrOwnPost
	}
	if meta.ApplicationsClosed {
		return ApplicationResult{}, ErrApplicationsClosed
	}

	if req := strings.TrimSpace(meta.GenderRequirement); req != "" && !strings.EqualFold(req, "any") {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return ApplicationResult{}, ErrInternal
		}
		if !strings.EqualFold(user.Gender, req) {
			return ApplicationResult{}, ErrGenderRestricted
		}
	}

	exists, err := s.apps.ExistsForPostAndUser(ctx, postID, userID)
	if err != nil {
		return ApplicationResult{}, ErrInternal
	}
	if exists {
		return ApplicationResult{}, ErrAlreadyApplied
	}

	app, err := s.apps.Create(ctx, postID, userID, application.StatusPending)
	if err != nil {
		return ApplicationResult{}, ErrInternal
	}

	s.invalidateAfterApplicationEvent(ctx, userID, postID)
	if s.notifier != nil {
		s.notifier.NotifyFeedUpdated("application.created", postID)
	}

	return toResult(app), nil
}

func (s *ApplicationService) Accept(ctx context.Context, actorID, applicationID uuid.UUID) (ApplicationResult, error) {
	app, meta, err := s.loadForDecision(ctx, actorID, applicationID)
	if err != nil {
		return ApplicationResult{}, err
	}

	if _, err := application.Transition(app.Status, application.StatusAccepted); err != nil {
		return ApplicationResult{}, err
	}

	if err := s.apps.Accept(ctx, app); err != nil {
		switch {
		case errors.Is(err, repository.ErrApplicationDecided):
			// Lost the race against another decision on the same row.
			return ApplicationResult{}, ErrInvalidTransition
		case errors.Is(err, repository.ErrApplicationNotFound):
			return ApplicationResult{}, ErrApplicationNotFound
		default:
			return ApplicationResult{}, ErrInternal
		}
	}
	app.Status = application.StatusAccepted

	// Close the post once the team is full. Teammate count includes the
	// member just accepted.
	if meta.TeamSize > 0 {
		n, err := s.posts.CountTeammates(ctx, app.PostID)
		if err == nil && n >= meta.TeamSize {
			if err := s.posts.CloseApplications(ctx, app.PostID); err != nil && s.logger != nil {
				s.logger.Printf("[Applications] close after full team failed post=%s err=%v", app.PostID, err)
			}
			if s.notifier != nil {
				s.notifier.NotifyFeedUpdated("post.closed", app.PostID)
			}
		}
	}

	s.invalidateAfterApplicationEvent(ctx, app.UserID, app.PostID)
	return toResult(app), nil
}

func (s *ApplicationService) Reject(ctx context.Context, actorID, applicationID uuid.UUID) (ApplicationResult, error) {
	app, _, err := s.loadForDecision(ctx, actorID, applicationID)
	if err != nil {
		return ApplicationResult{}, err
	}

	next, err := application.Transition(app.Status, application.StatusRejected)
	if err != nil {
		return ApplicationResult{}, err
	}

	if err := s.apps.UpdateStatus(ctx, app.ID, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrApplicationDecided):
			return ApplicationResult{}, ErrInvalidTransition
		case errors.Is(err, repository.ErrApplicationNotFound):
			return ApplicationResult{}, ErrApplicationNotFound
		default:
			return ApplicationResult{}, ErrInternal
		}
	}
	app.Status = next

	s.invalidateAfterApplicationEvent(ctx, app.UserID, app.PostID)
	return toResult(app), nil
}

// loadForDecision fetches the application and enforces that the actor
// owns the post it targets.
func (s *ApplicationService) loadForDecision(ctx context.Context, actorID, applicationID uuid.UUID) (repository.Application, repository.PostMeta, error) {
	if actorID == uuid.Nil {
		return repository.Application{}, repository.PostMeta{}, ErrUnauthorized
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return repository.Application{}, repository.PostMeta{}, ErrApplicationNotFound
		}
		return repository.Application{}, repository.PostMeta{}, ErrInternal
	}

	meta, err := s.posts.GetMeta(ctx, app.PostID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return repository.Application{}, repository.PostMeta{}, ErrPostNotFound
		}
		return repository.Application{}, repository.PostMeta{}, ErrInternal
	}
	if meta.CreatorID != actorID {
		return repository.Application{}, repository.PostMeta{}, ErrForbidden
	}
	return app, meta, nil
}

func (s *ApplicationService) invalidateAfterApplicationEvent(ctx context.Context, userID, postID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateUserRecommendations(ctx, userID); err != nil && s.logger != nil {
		s.logger.Printf("[Applications] cache invalidation failed user=%s err=%v", userID, err)
	}
	if err := s.invalidator.InvalidatePostApplicants(ctx, postID); err != nil && s.logger != nil {
		s.logger.Printf("[Applications] cache invalidation failed post=%s err=%v", postID, err)
	}
}

func toResult(app repository.Application) ApplicationResult {
	return ApplicationResult{ID: app.ID, PostID: app.PostID, UserID: app.UserID, Status: app.Status}
}
