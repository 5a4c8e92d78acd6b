package recommend

import "strings"

// Taxonomy maps skill keywords into fixed categories and lists which
// categories complement each other. It is immutable configuration passed
// into the engine, never package state.
type Taxonomy struct {
	Categories  map[string][]string
	Complements map[string][]string
}

const (
	CategoryFrontend    = "Frontend"
	CategoryBackend     = "Backend"
	CategoryDatabase    = "Database"
	CategoryDevOps      = "DevOps"
	CategoryMobile      = "Mobile"
	CategoryDataScience = "Data Science"
	CategoryDesign      = "Design"
)

// DefaultTaxonomy returns the built-in skill taxonomy. A keyword may
// appear under more than one category; categories are not mutually
// exclusive.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: map[string][]string{
			CategoryFrontend: {
				"react", "angular", "vue", "javascript", "typescript",
				"html", "html5", "css", "css3", "tailwind css", "svelte",
				"next.js",
			},
			CategoryBackend: {
				"python", "flask", "django", "go", "node.js", "java",
				"spring", "express", "php", "ruby", "c#", ".net",
				"fastapi", "rest api",
			},
			CategoryDatabase: {
				"sql", "postgresql", "mysql", "mongodb", "sqlite",
				"redis", "sqlalchemy",
			},
			CategoryDevOps: {
				"docker", "kubernetes", "aws", "gcp", "azure", "ci/cd",
				"terraform", "linux", "git",
			},
			CategoryMobile: {
				"android", "ios", "flutter", "react native", "kotlin",
				"swift",
			},
			CategoryDataScience: {
				"machine learning", "data science", "deep learning",
				"pandas", "numpy", "tensorflow", "pytorch", "nlp", "r",
			},
			CategoryDesign: {
				"ui/ux design", "figma", "photoshop", "illustrator",
				"graphic design", "wireframing",
			},
		},
		Complements: map[string][]string{
			CategoryFrontend:    {CategoryBackend, CategoryDesign, CategoryDatabase},
			CategoryBackend:     {CategoryFrontend, CategoryDatabase, CategoryDevOps},
			CategoryDatabase:    {CategoryBackend, CategoryDataScience},
			CategoryDevOps:      {CategoryBackend, CategoryDatabase},
			CategoryMobile:      {CategoryBackend, CategoryDesign},
			CategoryDataScience: {CategoryBackend, CategoryDatabase},
			CategoryDesign:      {CategoryFrontend, CategoryMobile},
		},
	}
}

// CategoriesFor resolves a skill list into the set of categories it
// touches. Matching is case-insensitive on the trimmed skill name.
func (t Taxonomy) CategoriesFor(skills []string) map[string]bool {
	out := make(map[string]bool)
	for _, raw := range skills {
		name := normalizeSkill(raw)
		if name == "" {
			continue
		}
		for cat, keywords := range t.Categories {
			for _, kw := range keywords {
				if name == kw {
					out[cat] = true
					break
				}
			}
		}
	}
	return out
}

// ComplementaryScore awards one point for every category the post needs
// that the user lacks, provided that category complements one the user
// already covers. It rewards users who complete a team rather than clone
// it.
func (t Taxonomy) ComplementaryScore(userSkills, requiredSkills []string) float64 {
	userCats := t.CategoriesFor(userSkills)
	postCats := t.CategoriesFor(requiredSkills)

	score := 0.0
	for missing := range postCats {
		if userCats[missing] {
			continue
		}
		for have := range userCats {
			if containsString(t.Complements[have], missing) {
				score++
				break
			}
		}
	}
	return score
}

// MatchSkills returns the required skills the user has, compared
// case-insensitively after trimming.
func MatchSkills(userSkills []Skill, required []string) []string {
	have := make(map[string]struct{}, len(userSkills))
	for _, s := range userSkills {
		if n := normalizeSkill(s.Name); n != "" {
			have[n] = struct{}{}
		}
	}

	out := make([]string, 0)
	for _, r := range required {
		n := normalizeSkill(r)
		if n == "" {
			continue
		}
		if _, ok := have[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// RarityBonus counts matched skills that appear in fewer than threshold
// posts' requirements platform-wide. Usage keys are normalized skill
// names; an absent key means the skill is unused and therefore rare.
func RarityBonus(matched []string, usage map[string]int, threshold int) float64 {
	bonus := 0.0
	for _, name := range matched {
		if usage[normalizeSkill(name)] < threshold {
			bonus++
		}
	}
	return bonus
}

func normalizeSkill(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
