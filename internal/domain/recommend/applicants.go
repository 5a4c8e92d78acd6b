package recommend

import "sort"

// RecommendApplicants ranks candidate users for a post. Mirrors the post
// ranker without the text-similarity term: verified/level-weighted skill
// overlap plus coarse geo tiers. Existing teammates, applicants and the
// creator are excluded; only candidates with a positive score survive.
func (e *Engine) RecommendApplicants(post PostSnapshot, users []UserSnapshot, limit int) []RankedUser {
	if limit <= 0 {
		limit = e.opts.MinResults
	}

	scored := make([]RankedUser, 0, len(users))
	for _, u := range users {
		if u.ID == post.CreatorID {
			continue
		}
		if u.HasAppliedTo(post.ID) || u.IsTeammateOn(post.ID) {
			continue
		}
		if genderConflict(u.Gender, post.GenderRequirement) {
			continue
		}

		skillScore := applicantSkillScore(u.Skills, post.RequiredSkills)
		geoScore := CoarseProximityScore(u.Coords, post.Coords)
		total := skillScore + geoScore
		if total <= 0 {
			continue
		}

		scored = append(scored, RankedUser{
			User:       u,
			Score:      total,
			SkillScore: skillScore,
			GeoScore:   geoScore,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// applicantSkillScore weights each matched required skill by the user's
// proficiency level (clamped to 1..5) and doubles it when the skill is
// verified.
func applicantSkillScore(userSkills []Skill, required []string) float64 {
	byName := make(map[string]Skill, len(userSkills))
	for _, s := range userSkills {
		n := normalizeSkill(s.Name)
		if n == "" {
			continue
		}
		byName[n] = s
	}

	score := 0.0
	for _, r := range required {
		s, ok := byName[normalizeSkill(r)]
		if !ok {
			continue
		}
		level := s.Level
		if level < 1 {
			level = 1
		}
		if level > 5 {
			level = 5
		}
		contrib := float64(level)
		if s.Verified {
			contrib *= 2
		}
		score += contrib
	}
	return score
}
