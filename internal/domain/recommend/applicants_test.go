package recommend

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecommendApplicantsExcludesEngagedUsers(t *testing.T) {
	e := testEngine(time.Now())
	post := PostSnapshot{ID: uuid.New(), CreatorID: uuid.New(), RequiredSkills: []string{"go"}}

	creator := UserSnapshot{ID: post.CreatorID, Skills: []Skill{{Name: "go", Level: 5}}}
	applicant := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: 5}}, AppliedPostIDs: []uuid.UUID{post.ID}}
	teammate := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: 5}}, TeammatePostIDs: []uuid.UUID{post.ID}}
	candidate := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: 2}}}

	got := e.RecommendApplicants(post, []UserSnapshot{creator, applicant, teammate, candidate}, 10)
	if len(got) != 1 || got[0].User.ID != candidate.ID {
		t.Fatalf("expected only the fresh candidate, got %d results", len(got))
	}
}

func TestRecommendApplicantsSkillWeighting(t *testing.T) {
	e := testEngine(time.Now())
	post := PostSnapshot{ID: uuid.New(), CreatorID: uuid.New(), RequiredSkills: []string{"go", "react"}}

	verified := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: 3, Verified: true}}}
	unverified := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: 3}}}
	novice := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: 1}}}

	got := e.RecommendApplicants(post, []UserSnapshot{novice, unverified, verified}, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	if got[0].User.ID != verified.ID {
		t.Fatalf("expected verified skill to rank first")
	}
	if got[1].User.ID != unverified.ID {
		t.Fatalf("expected higher level to beat lower level")
	}
	if got[0].SkillScore != 6 {
		t.Fatalf("verified level 3: expected skill score 6, got %f", got[0].SkillScore)
	}
}

func TestRecommendApplicantsGeoTiers(t *testing.T) {
	e := testEngine(time.Now())
	post := PostSnapshot{
		ID:             uuid.New(),
		CreatorID:      uuid.New(),
		RequiredSkills: []string{"go"},
		Coords:         &chennai,
	}

	local := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: 1}}, Coords: &Coordinates{Lat: 13.10, Lon: 80.25}}
	remote := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: 1}}}

	got := e.RecommendApplicants(post, []UserSnapshot{remote, local}, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].User.ID != local.ID || got[0].GeoScore != 10 {
		t.Fatalf("expected nearby candidate first with geo 10, got %f", got[0].GeoScore)
	}
	if got[1].GeoScore != 0 {
		t.Fatalf("expected missing coords to score 0, got %f", got[1].GeoScore)
	}
}

func TestRecommendApplicantsDropsZeroAndTruncates(t *testing.T) {
	e := testEngine(time.Now())
	post := PostSnapshot{ID: uuid.New(), CreatorID: uuid.New(), RequiredSkills: []string{"go"}}

	noSignal := UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "figma", Level: 5}}}
	users := []UserSnapshot{noSignal}
	for i := 0; i < 4; i++ {
		users = append(users, UserSnapshot{ID: uuid.New(), Skills: []Skill{{Name: "go", Level: i + 1}}})
	}

	got := e.RecommendApplicants(post, users, 2)
	if len(got) != 2 {
		t.Fatalf("expected truncation to limit, got %d", len(got))
	}
	for _, ru := range got {
		if ru.User.ID == noSignal.ID {
			t.Fatalf("zero-score candidate must be dropped")
		}
		if ru.Score <= 0 {
			t.Fatalf("expected positive scores only")
		}
	}
}

func TestRecommendApplicantsMalformedSkillsTreatedAsEmpty(t *testing.T) {
	e := testEngine(time.Now())
	post := PostSnapshot{ID: uuid.New(), CreatorID: uuid.New(), RequiredSkills: []string{"go"}, Coords: &chennai}

	blankSkills := UserSnapshot{
		ID:     uuid.New(),
		Skills: []Skill{{Name: "   "}, {Name: ""}},
		Coords: &Coordinates{Lat: 13.09, Lon: 80.26},
	}

	got := e.RecommendApplicants(post, []UserSnapshot{blankSkills}, 10)
	// Geo still counts: malformed skills degrade to zero contribution but
	// do not exclude the candidate.
	if len(got) != 1 {
		t.Fatalf("expected candidate kept on geo signal alone, got %d", len(got))
	}
	if got[0].SkillScore != 0 {
		t.Fatalf("expected zero skill score, got %f", got[0].SkillScore)
	}
}
