package usecase

import (
	"context"
	"errors"
	"testing"

	"hackmate/internal/domain/application"
	"hackmate/internal/repository"

	"github.com/google/uuid"
)

type fakeApplicationRepo struct {
	apps     map[uuid.UUID]repository.Application
	accepted []uuid.UUID
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: map[uuid.UUID]repository.Application{}}
}

func (f *fakeApplicationRepo) Create(_ context.Context, postID, userID uuid.UUID, status application.Status) (repository.Application, error) {
	app := repository.Application{ID: uuid.New(), PostID: postID, UserID: userID, Status: status}
	f.apps[app.ID] = app
	return app, nil
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return repository.Application{}, repository.ErrApplicationNotFound
	}
	return app, nil
}

func (f *fakeApplicationRepo) ExistsForPostAndUser(_ context.Context, postID, userID uuid.UUID) (bool, error) {
	for _, app := range f.apps {
		if app.PostID == postID && app.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationRepo) ListForPost(_ context.Context, postID uuid.UUID) ([]repository.Application, error) {
	out := make([]repository.Application, 0)
	for _, app := range f.apps {
		if app.PostID == postID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *fakeApplicationRepo) UpdateStatus(_ context.Context, id uuid.UUID, status application.Status) error {
	app, ok := f.apps[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	if app.Status != application.StatusPending && app.Status != application.StatusInvited {
		return repository.ErrApplicationDecided
	}
	app.Status = status
	f.apps[id] = app
	return nil
}

func (f *fakeApplicationRepo) Accept(_ context.Context, app repository.Application) error {
	stored, ok := f.apps[app.ID]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	if stored.Status != application.StatusPending && stored.Status != application.StatusInvited {
		return repository.ErrApplicationDecided
	}
	stored.Status = application.StatusAccepted
	f.apps[app.ID] = stored
	f.accepted = append(f.accepted, app.ID)
	return nil
}

// staleReadApplicationRepo serves a frozen snapshot from GetByID, the
// way two racing requests both see the row before either decision
// lands. Writes still go through the shared fake.
type staleReadApplicationRepo struct {
	*fakeApplicationRepo
	snapshot repository.Application
}

func (f *staleReadApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.Application, error) {
	if id == f.snapshot.ID {
		return f.snapshot, nil
	}
	return f.fakeApplicationRepo.GetByID(ctx, id)
}

type fakePostRepo struct {
	metas     map[uuid.UUID]repository.PostMeta
	teammates map[uuid.UUID]int
	closed    map[uuid.UUID]bool
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		metas:     map[uuid.UUID]repository.PostMeta{},
		teammates: map[uuid.UUID]int{},
		closed:    map[uuid.UUID]bool{},
	}
}

func (f *fakePostRepo) ListFeed(_ context.Context, _ string, _, _ int) ([]repository.FeedPost, error) {
	return nil, nil
}

func (f *fakePostRepo) GetMeta(_ context.Context, postID uuid.UUID) (repository.PostMeta, error) {
	m, ok := f.metas[postID]
	if !ok {
		return repository.PostMeta{}, repository.ErrPostNotFound
	}
	return m, nil
}

func (f *fakePostRepo) CountTeammates(_ context.Context, postID uuid.UUID) (int, error) {
	return f.teammates[postID], nil
}

func (f *fakePostRepo) CloseApplications(_ context.Context, postID uuid.UUID) error {
	f.closed[postID] = true
	return nil
}

func (f *fakePostRepo) ExistsByEventAndCreator(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakePostRepo) Create(_ context.Context, _ repository.NewPost) (uuid.UUID, error) {
	return uuid.New(), nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]repository.User
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) EnsureSystemUser(_ context.Context, _, _ string) (uuid.UUID, error) {
	return uuid.New(), nil
}

type fakeInvalidator struct {
	users []uuid.UUID
	posts []uuid.UUID
}

func (f *fakeInvalidator) InvalidateUserRecommendations(_ context.Context, userID uuid.UUID) error {
	f.users = append(f.users, userID)
	return nil
}

func (f *fakeInvalidator) InvalidatePostApplicants(_ context.Context, postID uuid.UUID) error {
	f.posts = append(f.posts, postID)
	return nil
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) NotifyFeedUpdated(event string, _ uuid.UUID) {
	f.events = append(f.events, event)
}

func newApplicationService() (*ApplicationService, *fakeApplicationRepo, *fakePostRepo, *fakeUserRepo, *fakeInvalidator, *fakeNotifier) {
	apps := newFakeApplicationRepo()
	posts := newFakePostRepo()
	users := &fakeUserRepo{users: map[uuid.UUID]repository.User{}}
	inv := &fakeInvalidator{}
	notif := &fakeNotifier{}
	return NewApplicationUsecase(apps, posts, users, inv, notif, nil), apps, posts, users, inv, notif
}

func TestApplyHappyPath(t *testing.T) {
	svc, _, posts, _, inv, notif := newApplicationService()

	postID := uuid.New()
	posts.metas[postID] = repository.PostMeta{ID: postID, CreatorID: uuid.New()}
	userID := uuid.New()

	res, err := svc.Apply(context.Background(), userID, postID)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Status != application.StatusPending {
		t.Fatalf("expected Pending, got %s", res.Status)
	}
	if len(inv.users) != 1 || inv.users[0] != userID {
		t.Fatalf("expected user cache invalidation")
	}
	if len(notif.events) != 1 || notif.events[0] != "application.created" {
		t.Fatalf("expected feed notification, got %v", notif.events)
	}
}

func TestApplyGuards(t *testing.T) {
	svc, _, posts, users, _, _ := newApplicationService()

	creator := uuid.New()
	open := uuid.New()
	posts.metas[open] = repository.PostMeta{ID: open, CreatorID: creator}
	closed := uuid.New()
	posts.metas[closed] = repository.PostMeta{ID: closed, CreatorID: creator, ApplicationsClosed: true}
	restricted := uuid.New()
	posts.metas[restricted] = repository.PostMeta{ID: restricted, CreatorID: creator, GenderRequirement: "Female"}

	male := uuid.New()
	users.users[male] = repository.User{ID: male, Gender: "Male"}

	if _, err := svc.Apply(context.Background(), creator, open); !errors.Is(err, ErrOwnPost) {
		t.Fatalf("own post: expected ErrOwnPost, got %v", err)
	}
	if _, err := svc.Apply(context.Background(), male, closed); !errors.Is(err, ErrApplicationsClosed) {
		t.Fatalf("closed post: expected ErrApplicationsClosed, got %v", err)
	}
	if _, err := svc.Apply(context.Background(), male, restricted); !errors.Is(err, ErrGenderRestricted) {
		t.Fatalf("restricted post: expected ErrGenderRestricted, got %v", err)
	}
	if _, err := svc.Apply(context.Background(), male, uuid.New()); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("missing post: expected ErrPostNotFound, got %v", err)
	}

	if _, err := svc.Apply(context.Background(), male, open); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if _, err := svc.Apply(context.Background(), male, open); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("second apply: expected ErrAlreadyApplied, got %v", err)
	}
}

func TestAcceptHappyPath(t *testing.T) {
	svc, apps, posts, _, _, _ := newApplicationService()

	creator := uuid.New()
	postID := uuid.New()
	posts.metas[postID] = repository.PostMeta{ID: postID, CreatorID: creator, TeamSize: 4}

	app, _ := apps.Create(context.Background(), postID, uuid.New(), application.StatusPending)

	res, err := svc.Accept(context.Background(), creator, app.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if res.Status != application.StatusAccepted {
		t.Fatalf("expected Accepted, got %s", res.Status)
	}
	if len(apps.accepted) != 1 {
		t.Fatalf("expected transactional accept path, got %d", len(apps.accepted))
	}
	if posts.closed[postID] {
		t.Fatalf("team not full, post must stay open")
	}
}

func TestAcceptClosesFullTeam(t *testing.T) {
	svc, apps, posts, _, _, notif := newApplicationService()

	creator := uuid.New()
	postID := uuid.New()
	posts.metas[postID] = repository.PostMeta{ID: postID, CreatorID: creator, TeamSize: 2}
	posts.teammates[postID] = 2

	app, _ := apps.Create(context.Background(), postID, uuid.New(), application.StatusPending)
	if _, err := svc.Accept(context.Background(), creator, app.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !posts.closed[postID] {
		t.Fatalf("expected post closed once team is full")
	}
	found := false
	for _, ev := range notif.events {
		if ev == "post.closed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected post.closed notification, got %v", notif.events)
	}
}

func TestAcceptRequiresPostOwner(t *testing.T) {
	svc, apps, posts, _, _, _ := newApplicationService()

	postID := uuid.New()
	posts.metas[postID] = repository.PostMeta{ID: postID, CreatorID: uuid.New()}
	app, _ := apps.Create(context.Background(), postID, uuid.New(), application.StatusPending)

	if _, err := svc.Accept(context.Background(), uuid.New(), app.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDecisionOnTerminalApplicationConflicts(t *testing.T) {
	svc, apps, posts, _, _, _ := newApplicationService()

	creator := uuid.New()
	postID := uuid.New()
	posts.metas[postID] = repository.PostMeta{ID: postID, CreatorID: creator}
	app, _ := apps.Create(context.Background(), postID, uuid.New(), application.StatusRejected)

	if _, err := svc.Accept(context.Background(), creator, app.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("accept rejected: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.Reject(context.Background(), creator, app.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reject rejected: expected ErrInvalidTransition, got %v", err)
	}
	got, _ := apps.GetByID(context.Background(), app.ID)
	if got.Status != application.StatusRejected {
		t.Fatalf("failed decision must not mutate, got %s", got.Status)
	}
}

func TestRacingAcceptsSettleOnce(t *testing.T) {
	apps := newFakeApplicationRepo()
	posts := newFakePostRepo()
	users := &fakeUserRepo{users: map[uuid.UUID]repository.User{}}

	creator := uuid.New()
	postID := uuid.New()
	posts.metas[postID] = repository.PostMeta{ID: postID, CreatorID: creator, TeamSize: 4}
	app, _ := apps.Create(context.Background(), postID, uuid.New(), application.StatusPending)

	stale := &staleReadApplicationRepo{fakeApplicationRepo: apps, snapshot: app}
	svc := NewApplicationUsecase(stale, posts, users, nil, nil, nil)

	if _, err := svc.Accept(context.Background(), creator, app.ID); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.Accept(context.Background(), creator, app.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second accept: expected ErrInvalidTransition, got %v", err)
	}
	if len(apps.accepted) != 1 {
		t.Fatalf("accept side effects must run exactly once, ran %d times", len(apps.accepted))
	}

	if _, err := svc.Reject(context.Background(), creator, app.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reject after accept: expected ErrInvalidTransition, got %v", err)
	}
	got, _ := apps.GetByID(context.Background(), app.ID)
	if got.Status != application.StatusAccepted {
		t.Fatalf("settled status must survive the race, got %s", got.Status)
	}
}

func TestRejectInvitedApplication(t *testing.T) {
	svc, apps, posts, _, _, _ := newApplicationService()

	creator := uuid.New()
	postID := uuid.New()
	posts.metas[postID] = repository.PostMeta{ID: postID, CreatorID: creator}
	app, _ := apps.Create(context.Background(), postID, uuid.New(), application.StatusInvited)

	res, err := svc.Reject(context.Background(), creator, app.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if res.Status != application.StatusRejected {
		t.Fatalf("expected Rejected, got %s", res.Status)
	}
}
