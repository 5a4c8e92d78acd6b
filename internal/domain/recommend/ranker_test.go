package recommend

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testEngine(now time.Time) *Engine {
	e := NewDefaultEngine()
	e.now = func() time.Time { return now }
	return e
}

func openPost(creator uuid.UUID, age time.Duration, now time.Time) PostSnapshot {
	return PostSnapshot{
		ID:        uuid.New(),
		CreatorID: creator,
		CreatedAt: now.Add(-age),
	}
}

func TestRecommendPostsColdStartReturnsRecentOpenPosts(t *testing.T) {
	now := time.Now()
	e := testEngine(now)
	user := UserSnapshot{ID: uuid.New()}
	creator := uuid.New()

	newest := openPost(creator, time.Hour, now)
	newest.RequiredSkills = []string{"go"}
	middle := openPost(creator, 48*time.Hour, now)
	oldest := openPost(creator, 240*time.Hour, now)
	closed := openPost(creator, time.Minute, now)
	closed.ApplicationsClosed = true
	own := openPost(user.ID, time.Minute, now)

	got := e.RecommendPosts(user, []PostSnapshot{oldest, closed, newest, own, middle}, nil, 5)
	if len(got) != 3 {
		t.Fatalf("expected 3 open posts, got %d", len(got))
	}
	if got[0].Post.ID != newest.ID || got[1].Post.ID != middle.ID || got[2].Post.ID != oldest.ID {
		t.Fatalf("expected recency order, got %v %v %v", got[0].Post.ID, got[1].Post.ID, got[2].Post.ID)
	}
	for _, rp := range got {
		if rp.Score != 0 {
			t.Fatalf("cold start results are unscored, got %f", rp.Score)
		}
	}
}

func TestRecommendPostsGenderFilter(t *testing.T) {
	now := time.Now()
	e := testEngine(now)
	user := UserSnapshot{ID: uuid.New(), Gender: "Female", Skills: []Skill{{Name: "go"}}}

	match := openPost(uuid.New(), time.Hour, now)
	match.GenderRequirement = "Female"
	match.RequiredSkills = []string{"go"}
	anyReq := openPost(uuid.New(), time.Hour, now)
	anyReq.GenderRequirement = GenderAny
	anyReq.RequiredSkills = []string{"go"}
	mismatch := openPost(uuid.New(), time.Hour, now)
	mismatch.GenderRequirement = "Male"
	mismatch.RequiredSkills = []string{"go"}

	got := e.RecommendPosts(user, []PostSnapshot{match, anyReq, mismatch}, nil, 5)
	for _, rp := range got {
		if rp.Post.ID == mismatch.ID {
			t.Fatalf("gender-mismatched post must never be recommended")
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(got))
	}
}

func TestRecommendPostsExcludesAppliedAndTeamed(t *testing.T) {
	now := time.Now()
	e := testEngine(now)

	applied := openPost(uuid.New(), time.Hour, now)
	applied.RequiredSkills = []string{"go"}
	teamed := openPost(uuid.New(), time.Hour, now)
	teamed.RequiredSkills = []string{"go"}
	fresh := openPost(uuid.New(), time.Hour, now)
	fresh.RequiredSkills = []string{"go"}

	user := UserSnapshot{
		ID:              uuid.New(),
		Skills:          []Skill{{Name: "go"}},
		AppliedPostIDs:  []uuid.UUID{applied.ID},
		TeammatePostIDs: []uuid.UUID{teamed.ID},
	}

	got := e.RecommendPosts(user, []PostSnapshot{applied, teamed, fresh}, nil, 5)
	if len(got) != 1 || got[0].Post.ID != fresh.ID {
		t.Fatalf("expected only the unengaged post, got %d results", len(got))
	}
}

func TestRecommendPostsDropsZeroScore(t *testing.T) {
	e := testEngine(time.Now())
	user := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go"}}}

	// Stale post with no overlapping signal at all.
	stale := PostSnapshot{
		ID:             uuid.New(),
		CreatorID:      uuid.New(),
		CreatedAt:      time.Now().Add(-90 * 24 * time.Hour),
		RequiredSkills: []string{"figma"},
	}

	got := e.RecommendPosts(user, []PostSnapshot{stale}, map[string]int{"figma": 20}, 5)
	if len(got) != 0 {
		t.Fatalf("expected zero-signal post to be dropped, got %d", len(got))
	}
}

func TestRecommendPostsDiversityCapWithBackfill(t *testing.T) {
	now := time.Now()
	e := testEngine(now)
	user := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go"}}}

	prolific := uuid.New()
	other := uuid.New()
	posts := make([]PostSnapshot, 0, 5)
	for i := 0; i < 4; i++ {
		p := openPost(prolific, time.Duration(i+1)*time.Hour, now)
		p.RequiredSkills = []string{"go"}
		posts = append(posts, p)
	}
	diverse := openPost(other, 30*time.Hour, now)
	diverse.RequiredSkills = []string{"go"}
	posts = append(posts, diverse)

	got := e.RecommendPosts(user, posts, map[string]int{"go": 20}, 5)
	if len(got) != 5 {
		t.Fatalf("expected backfill to the limit, got %d", len(got))
	}

	// First three slots hold two prolific posts and the diverse one; the
	// cap defers the rest to backfill.
	counts := map[uuid.UUID]int{}
	for _, rp := range got[:3] {
		counts[rp.Post.CreatorID]++
	}
	if counts[prolific] > 2 {
		t.Fatalf("diversity cap violated before backfill: %d", counts[prolific])
	}
	if counts[other] != 1 {
		t.Fatalf("expected the diverse creator in the capped window")
	}
}

func TestRecommendPostsHonorsSmallLimit(t *testing.T) {
	now := time.Now()
	e := testEngine(now)
	user := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go"}}}

	posts := make([]PostSnapshot, 0, 6)
	for i := 0; i < 6; i++ {
		p := openPost(uuid.New(), time.Duration(i+1)*time.Hour, now)
		p.RequiredSkills = []string{"go"}
		posts = append(posts, p)
	}

	got := e.RecommendPosts(user, posts, map[string]int{"go": 20}, 3)
	if len(got) != 3 {
		t.Fatalf("scored path must honor the requested limit, got %d", len(got))
	}

	// Cold-start padding still applies its own floor.
	cold := e.RecommendPosts(UserSnapshot{ID: uuid.New()}, posts, nil, 3)
	if len(cold) != 5 {
		t.Fatalf("cold start pads to the minimum, got %d", len(cold))
	}
}

func TestRecommendPostsDeterministic(t *testing.T) {
	now := time.Now()
	e := testEngine(now)
	user := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "python"}, {Name: "flask"}}, Bio: "backend apis"}

	posts := make([]PostSnapshot, 0, 6)
	for i := 0; i < 6; i++ {
		p := openPost(uuid.New(), time.Duration(i)*12*time.Hour, now)
		p.RequiredSkills = []string{"python", "react"}
		p.Description = "web hackathon team"
		p.Idea = "build an api product"
		posts = append(posts, p)
	}

	first := e.RecommendPosts(user, posts, map[string]int{"python": 9}, 5)
	second := e.RecommendPosts(user, posts, map[string]int{"python": 9}, 5)

	firstIDs := make([]uuid.UUID, 0, len(first))
	secondIDs := make([]uuid.UUID, 0, len(second))
	for _, rp := range first {
		firstIDs = append(firstIDs, rp.Post.ID)
	}
	for _, rp := range second {
		secondIDs = append(secondIDs, rp.Post.ID)
	}
	if !reflect.DeepEqual(firstIDs, secondIDs) {
		t.Fatalf("expected identical ordering across runs")
	}
}

func TestRecencyScoreWindow(t *testing.T) {
	now := time.Now()
	e := testEngine(now)

	if s := e.recencyScore(now); s < 0.99 {
		t.Fatalf("fresh post: expected ~1, got %f", s)
	}
	if s := e.recencyScore(now.Add(-15 * 24 * time.Hour)); s < 0.45 || s > 0.55 {
		t.Fatalf("mid-window: expected ~0.5, got %f", s)
	}
	if s := e.recencyScore(now.Add(-45 * 24 * time.Hour)); s != 0 {
		t.Fatalf("past window: expected 0, got %f", s)
	}
	if s := e.recencyScore(time.Time{}); s != 0 {
		t.Fatalf("zero timestamp: expected 0, got %f", s)
	}
}

func TestRecommendPostsEventTypeSignal(t *testing.T) {
	now := time.Now()
	e := testEngine(now)

	appliedTo := openPost(uuid.New(), 24*time.Hour, now)
	appliedTo.EventType = "Hackathon"
	appliedTo.RequiredSkills = []string{"go"}

	sameType := openPost(uuid.New(), time.Hour, now)
	sameType.EventType = "hackathon"
	sameType.RequiredSkills = []string{"go"}

	otherType := openPost(uuid.New(), time.Hour, now)
	otherType.EventType = "Ideathon"
	otherType.RequiredSkills = []string{"go"}

	user := UserSnapshot{
		ID:             uuid.New(),
		Skills:         []Skill{{Name: "go"}},
		AppliedPostIDs: []uuid.UUID{appliedTo.ID},
	}

	got := e.RecommendPosts(user, []PostSnapshot{appliedTo, sameType, otherType}, map[string]int{"go": 20}, 5)
	var same, other *RankedPost
	for i := range got {
		switch got[i].Post.ID {
		case sameType.ID:
			same = &got[i]
		case otherType.ID:
			other = &got[i]
		}
	}
	if same == nil || other == nil {
		t.Fatalf("expected both candidates ranked")
	}
	if same.Components.EventType != 1 {
		t.Fatalf("expected event-type match (case-insensitive), got %f", same.Components.EventType)
	}
	if other.Components.EventType != 0 {
		t.Fatalf("expected no event-type match, got %f", other.Components.EventType)
	}
	if same.Score <= other.Score {
		t.Fatalf("expected matching event type to rank higher")
	}
}
