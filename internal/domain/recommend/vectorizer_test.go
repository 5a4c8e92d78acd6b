package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenizeDropsStopWordsAndPunctuation(t *testing.T) {
	got := Tokenize("We are Building a REAL-TIME chat app, with Go!")
	want := []string{"building", "real", "time", "chat", "app", "go"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestNewVectorSpaceTooFewDocuments(t *testing.T) {
	if s := NewVectorSpace(nil); s != nil {
		t.Fatalf("expected nil space for empty corpus")
	}
	if s := NewVectorSpace([][]string{{"go", "backend"}}); s != nil {
		t.Fatalf("expected nil space for single-document corpus")
	}
}

func TestNewVectorSpaceEmptyVocabulary(t *testing.T) {
	if s := NewVectorSpace([][]string{{}, {}}); s != nil {
		t.Fatalf("expected nil space when no document has terms")
	}
}

func TestCosineSimilarityBounds(t *testing.T) {
	a := Vector{"go": 0.5, "backend": 0.3}
	if sim := CosineSimilarity(a, a); math.Abs(sim-1) > 1e-9 {
		t.Fatalf("self similarity: expected 1, got %f", sim)
	}
	if sim := CosineSimilarity(a, Vector{}); sim != 0 {
		t.Fatalf("empty vector: expected 0, got %f", sim)
	}
	if sim := CosineSimilarity(a, Vector{"design": 0.7}); sim != 0 {
		t.Fatalf("disjoint vectors: expected 0, got %f", sim)
	}
}

func TestVectorizeUnknownTermsDropped(t *testing.T) {
	s := NewVectorSpace([][]string{{"go", "backend"}, {"react", "frontend"}})
	if s == nil {
		t.Fatalf("expected non-nil space")
	}
	v := s.Vectorize([]string{"go", "rust"})
	if _, ok := v["rust"]; ok {
		t.Fatalf("expected out-of-vocabulary term to be dropped")
	}
	if v["go"] <= 0 {
		t.Fatalf("expected positive weight for in-vocabulary term")
	}
}

func TestMeanVector(t *testing.T) {
	m := MeanVector([]Vector{{"go": 1.0}, {"go": 3.0, "react": 2.0}})
	if math.Abs(m["go"]-2.0) > 1e-9 {
		t.Fatalf("expected mean go weight 2.0, got %f", m["go"])
	}
	if math.Abs(m["react"]-1.0) > 1e-9 {
		t.Fatalf("expected mean react weight 1.0, got %f", m["react"])
	}
}

func TestBuildTasteModelBioFallback(t *testing.T) {
	p1 := PostSnapshot{ID: uuid.New(), Description: "machine learning hackathon", CreatedAt: time.Now()}
	p2 := PostSnapshot{ID: uuid.New(), Description: "frontend design sprint", CreatedAt: time.Now()}
	user := UserSnapshot{ID: uuid.New(), Bio: "machine learning enthusiast"}

	m := BuildTasteModel(user, []PostSnapshot{p1, p2})
	if len(m.Taste) == 0 {
		t.Fatalf("expected taste vector from bio fallback")
	}

	simML := m.TextSimilarity(p1.ID)
	simFE := m.TextSimilarity(p2.ID)
	if simML <= simFE {
		t.Fatalf("expected ML post to score above frontend post: %f vs %f", simML, simFE)
	}
}

func TestBuildTasteModelPrefersAppliedPostsOverBio(t *testing.T) {
	liked := PostSnapshot{ID: uuid.New(), Description: "blockchain smart contracts"}
	other := PostSnapshot{ID: uuid.New(), Description: "mobile game jam"}
	third := PostSnapshot{ID: uuid.New(), Description: "blockchain defi protocol"}
	user := UserSnapshot{
		ID:             uuid.New(),
		Bio:            "mobile games fan",
		AppliedPostIDs: []uuid.UUID{liked.ID},
	}

	m := BuildTasteModel(user, []PostSnapshot{liked, other, third})
	if m.TextSimilarity(third.ID) <= m.TextSimilarity(other.ID) {
		t.Fatalf("expected applied-post text to drive the taste vector, not the bio")
	}
}

func TestBuildTasteModelColdCorpus(t *testing.T) {
	user := UserSnapshot{ID: uuid.New()}
	m := BuildTasteModel(user, nil)
	if sim := m.TextSimilarity(uuid.New()); sim != 0 {
		t.Fatalf("expected zero similarity without corpus, got %f", sim)
	}
}
