package recommend

import (
	"sort"
	"strings"
	"time"
)

// Weights are the fixed per-signal multipliers of the composite score.
// Text similarity carries the highest weight: semantic content match is
// the engine's strongest signal.
type Weights struct {
	Skill         float64
	Complementary float64
	Rarity        float64
	EventType     float64
	Recency       float64
	Location      float64
	Text          float64
}

func DefaultWeights() Weights {
	return Weights{
		Skill:         4.0,
		Complementary: 5.0,
		Rarity:        3.0,
		EventType:     1.5,
		Recency:       8.0,
		Location:      6.0,
		Text:          10.0,
	}
}

type Options struct {
	// RarityThreshold is the platform-wide usage count below which a
	// matched skill earns the rarity bonus.
	RarityThreshold int
	// RecencyWindowDays bounds the linear recency decay; older posts
	// contribute zero.
	RecencyWindowDays float64
	// DiversityCap is the maximum number of ranked results sharing one
	// creator before backfill.
	DiversityCap int
	// MinResults is the floor applied to the cold-start fallback size.
	MinResults int
}

func DefaultOptions() Options {
	return Options{
		RarityThreshold:   5,
		RecencyWindowDays: 30,
		DiversityCap:      2,
		MinResults:        5,
	}
}

// Engine is a pure, synchronous scorer over read-only snapshots. It holds
// no mutable state and is safe for concurrent use across requests; each
// call builds its own vector space.
type Engine struct {
	taxonomy Taxonomy
	weights  Weights
	opts     Options
	now      func() time.Time
}

func NewEngine(taxonomy Taxonomy, weights Weights, opts Options) *Engine {
	if opts.RarityThreshold <= 0 {
		opts.RarityThreshold = DefaultOptions().RarityThreshold
	}
	if opts.RecencyWindowDays <= 0 {
		opts.RecencyWindowDays = DefaultOptions().RecencyWindowDays
	}
	if opts.DiversityCap <= 0 {
		opts.DiversityCap = DefaultOptions().DiversityCap
	}
	if opts.MinResults <= 0 {
		opts.MinResults = DefaultOptions().MinResults
	}
	return &Engine{taxonomy: taxonomy, weights: weights, opts: opts, now: time.Now}
}

func NewDefaultEngine() *Engine {
	return NewEngine(DefaultTaxonomy(), DefaultWeights(), DefaultOptions())
}

// RecommendPosts ranks candidate posts for a user. skillUsage maps
// normalized skill names to the number of posts requiring them, used for
// the rarity bonus.
func (e *Engine) RecommendPosts(user UserSnapshot, posts []PostSnapshot, skillUsage map[string]int, limit int) []RankedPost {
	target := limit
	if target <= 0 {
		target = e.opts.MinResults
	}

	if user.ColdStart() {
		// The fallback pads thin results; the scored path honors the
		// requested limit as-is.
		if target < e.opts.MinResults {
			target = e.opts.MinResults
		}
		return e.coldStartFallback(user, posts, target)
	}

	candidates := e.filterCandidates(user, posts)
	if len(candidates) == 0 {
		return []RankedPost{}
	}

	model := BuildTasteModel(user, posts)
	eventTypes := knownEventTypes(user, posts)

	scored := make([]RankedPost, 0, len(candidates))
	for _, p := range candidates {
		rp := e.scorePost(user, p, model, eventTypes, skillUsage)
		if rp.Score <= 0 {
			continue
		}
		scored = append(scored, rp)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return diversify(scored, e.opts.DiversityCap, target)
}

func (e *Engine) scorePost(user UserSnapshot, p PostSnapshot, model TasteModel, eventTypes map[string]bool, skillUsage map[string]int) RankedPost {
	matched := MatchSkills(user.Skills, p.RequiredSkills)

	var b ScoreBreakdown
	b.Skill = float64(len(matched))
	b.Complementary = e.taxonomy.ComplementaryScore(user.SkillNames(), p.RequiredSkills)
	b.Rarity = RarityBonus(matched, skillUsage, e.opts.RarityThreshold)
	if p.EventType != "" && eventTypes[strings.ToLower(p.EventType)] {
		b.EventType = 1
	}
	b.Recency = e.recencyScore(p.CreatedAt)
	b.Location = ProximityScore(user.Coords, p.Coords, user.Location, p.Location)
	b.Text = model.TextSimilarity(p.ID)

	w := e.weights
	total := b.Skill*w.Skill +
		b.Complementary*w.Complementary +
		b.Rarity*w.Rarity +
		b.EventType*w.EventType +
		b.Recency*w.Recency +
		b.Location*w.Location +
		b.Text*w.Text

	return RankedPost{Post: p, Score: total, Components: b}
}

// recencyScore decays linearly from 1 at creation to 0 at the window
// bound; never negative.
func (e *Engine) recencyScore(createdAt time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	age := e.now().Sub(createdAt)
	if age < 0 {
		age = 0
	}
	days := age.Hours() / 24
	score := 1 - days/e.opts.RecencyWindowDays
	if score < 0 {
		return 0
	}
	return score
}

func (e *Engine) filterCandidates(user UserSnapshot, posts []PostSnapshot) []PostSnapshot {
	out := make([]PostSnapshot, 0, len(posts))
	for _, p := range posts {
		if p.CreatorID == user.ID {
			continue
		}
		if p.ApplicationsClosed {
			continue
		}
		if user.HasAppliedTo(p.ID) || user.IsTeammateOn(p.ID) {
			continue
		}
		if genderConflict(user.Gender, p.GenderRequirement) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// coldStartFallback returns the most recent open posts not created by the
// user, unscored. Applies when the user has no skills, history or bio.
func (e *Engine) coldStartFallback(user UserSnapshot, posts []PostSnapshot, target int) []RankedPost {
	open := make([]PostSnapshot, 0, len(posts))
	for _, p := range posts {
		if p.CreatorID == user.ID || p.ApplicationsClosed {
			continue
		}
		open = append(open, p)
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].CreatedAt.After(open[j].CreatedAt)
	})

	if len(open) > target {
		open = open[:target]
	}
	out := make([]RankedPost, 0, len(open))
	for _, p := range open {
		out = append(out, RankedPost{Post: p})
	}
	return out
}

// diversify caps results per creator, then backfills with the skipped
// candidates (highest score first) when the capped list falls short of
// the target.
func diversify(scored []RankedPost, creatorCap int, target int) []RankedPost {
	out := make([]RankedPost, 0, target)
	skipped := make([]RankedPost, 0)
	perCreator := make(map[string]int)

	for _, rp := range scored {
		if len(out) >= target {
			break
		}
		key := rp.Post.CreatorID.String()
		if perCreator[key] >= creatorCap {
			skipped = append(skipped, rp)
			continue
		}
		perCreator[key]++
		out = append(out, rp)
	}

	for _, rp := range skipped {
		if len(out) >= target {
			break
		}
		out = append(out, rp)
	}

	return out
}

// knownEventTypes collects the event types of posts the user applied to
// or created.
func knownEventTypes(user UserSnapshot, posts []PostSnapshot) map[string]bool {
	out := make(map[string]bool)
	for _, p := range posts {
		if p.EventType == "" {
			continue
		}
		if p.CreatorID == user.ID || user.HasAppliedTo(p.ID) {
			out[strings.ToLower(p.EventType)] = true
		}
	}
	return out
}

func genderConflict(userGender, requirement string) bool {
	req := trimmed(requirement)
	if req == "" || strings.EqualFold(req, GenderAny) {
		return false
	}
	return !strings.EqualFold(trimmed(userGender), req)
}
