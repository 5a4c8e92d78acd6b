package recommend

import "testing"

func TestMatchSkillsCaseInsensitive(t *testing.T) {
	user := []Skill{{Name: " Python "}, {Name: "FLASK"}}
	matched := MatchSkills(user, []string{"python", "React"})
	if len(matched) != 1 || matched[0] != "python" {
		t.Fatalf("expected single match on python, got %v", matched)
	}
}

func TestRarityBonus(t *testing.T) {
	usage := map[string]int{"python": 12, "haskell": 1}
	if b := RarityBonus([]string{"python"}, usage, 5); b != 0 {
		t.Fatalf("common skill: expected 0, got %f", b)
	}
	if b := RarityBonus([]string{"haskell"}, usage, 5); b != 1 {
		t.Fatalf("rare skill: expected 1, got %f", b)
	}
	// absent from usage means unused, therefore rare
	if b := RarityBonus([]string{"cobol"}, usage, 5); b != 1 {
		t.Fatalf("unused skill: expected 1, got %f", b)
	}
}

func TestComplementaryScorePythonFlaskVsReact(t *testing.T) {
	// Backend user against a post needing a Frontend skill: Frontend is
	// listed as complementary to Backend, so the missing category earns
	// a point.
	tax := DefaultTaxonomy()
	score := tax.ComplementaryScore([]string{"python", "flask"}, []string{"python", "react"})
	if score != 1 {
		t.Fatalf("expected complementary score 1, got %f", score)
	}
}

func TestComplementaryScoreNoPointForCoveredCategory(t *testing.T) {
	tax := DefaultTaxonomy()
	// User already covers Frontend, so the required react brings nothing.
	score := tax.ComplementaryScore([]string{"react"}, []string{"vue"})
	if score != 0 {
		t.Fatalf("expected 0 for category the user already has, got %f", score)
	}
}

func TestScenarioContributionOrder(t *testing.T) {
	// User {python, flask} vs post requiring {python, react} with python
	// used by >= 5 posts: complementary >= skill > rarity.
	user := []Skill{{Name: "python"}, {Name: "flask"}}
	required := []string{"python", "react"}
	usage := map[string]int{"python": 9, "react": 7}

	matched := MatchSkills(user, required)
	skillScore := float64(len(matched))
	rarity := RarityBonus(matched, usage, 5)
	comp := DefaultTaxonomy().ComplementaryScore([]string{"python", "flask"}, required)

	if skillScore != 1 {
		t.Fatalf("expected skill score 1, got %f", skillScore)
	}
	if rarity != 0 {
		t.Fatalf("expected rarity 0, got %f", rarity)
	}
	if comp != 1 {
		t.Fatalf("expected complementary 1, got %f", comp)
	}

	w := DefaultWeights()
	if comp*w.Complementary < skillScore*w.Skill {
		t.Fatalf("expected complementary contribution >= skill contribution")
	}
	if skillScore*w.Skill <= rarity*w.Rarity {
		t.Fatalf("expected skill contribution > rarity contribution")
	}
}

func TestCategoriesForMultiCategorySkill(t *testing.T) {
	tax := Taxonomy{
		Categories: map[string][]string{
			"Backend":  {"redis"},
			"Database": {"redis"},
		},
	}
	cats := tax.CategoriesFor([]string{"Redis"})
	if !cats["Backend"] || !cats["Database"] {
		t.Fatalf("expected skill to count toward both categories, got %v", cats)
	}
}
