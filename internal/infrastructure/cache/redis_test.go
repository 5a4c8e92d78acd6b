package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisWithClient(client, nil), mr
}

func TestGetSetJSONRoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	type payload struct {
		IDs []string `json:"ids"`
	}
	want := payload{IDs: []string{"a", "b"}}

	if err := c.SetJSON(ctx, "recs:posts:user:x:limit:5", want, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var got payload
	hit, err := c.GetJSON(ctx, "recs:posts:user:x:limit:5", &got)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if !hit {
		t.Fatalf("expected cache hit")
	}
	if len(got.IDs) != 2 || got.IDs[0] != "a" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestGetJSONMiss(t *testing.T) {
	c, _ := testCache(t)

	var out map[string]any
	hit, err := c.GetJSON(context.Background(), "missing", &out)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if hit {
		t.Fatalf("expected miss")
	}
}

func TestInvalidateAllRecommendations(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	userKey := PostRecommendationKey(uuid.New(), 5)
	postKey := ApplicantRecommendationKey(uuid.New(), 10)
	if err := c.SetJSON(ctx, userKey, []string{"x"}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := c.SetJSON(ctx, postKey, []string{"y"}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := c.SetJSON(ctx, "session:other", []string{"z"}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	if err := c.InvalidateAllRecommendations(ctx); err != nil {
		t.Fatalf("InvalidateAllRecommendations: %v", err)
	}

	if mr.Exists(userKey) || mr.Exists(postKey) {
		t.Fatalf("expected recommendation keys gone")
	}
	if !mr.Exists("session:other") {
		t.Fatalf("unrelated key must survive")
	}
}

func TestInvalidateUserRecommendations(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	target := uuid.New()
	other := uuid.New()
	if err := c.SetJSON(ctx, PostRecommendationKey(target, 5), []string{"x"}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := c.SetJSON(ctx, PostRecommendationKey(other, 5), []string{"y"}, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	if err := c.InvalidateUserRecommendations(ctx, target); err != nil {
		t.Fatalf("InvalidateUserRecommendations: %v", err)
	}
	if mr.Exists(PostRecommendationKey(target, 5)) {
		t.Fatalf("expected target user's keys gone")
	}
	if !mr.Exists(PostRecommendationKey(other, 5)) {
		t.Fatalf("other user's keys must survive")
	}
}

func TestUnavailableCacheBypasses(t *testing.T) {
	c := &Redis{client: nil}
	ctx := context.Background()

	if err := c.SetJSON(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("SetJSON on unavailable cache must no-op, got %v", err)
	}
	var out string
	hit, err := c.GetJSON(ctx, "k", &out)
	if err != nil || hit {
		t.Fatalf("GetJSON on unavailable cache must miss, hit=%v err=%v", hit, err)
	}
	if err := c.InvalidateAllRecommendations(ctx); err != nil {
		t.Fatalf("invalidate on unavailable cache must no-op, got %v", err)
	}
}
