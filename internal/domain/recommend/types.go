package recommend

import (
	"time"

	"github.com/google/uuid"
)

const GenderAny = "Any"

type Coordinates struct {
	Lat float64
	Lon float64
}

type Skill struct {
	Name     string
	Level    int
	Verified bool
}

// UserSnapshot is a read-only view of a user taken inside one consistent
// read; the engine never mutates it.
type UserSnapshot struct {
	ID       uuid.UUID
	Gender   string
	Bio      string
	Location string
	Coords   *Coordinates
	Skills   []Skill

	AppliedPostIDs  []uuid.UUID
	TeammatePostIDs []uuid.UUID
}

type PostSnapshot struct {
	ID                 uuid.UUID
	CreatorID          uuid.UUID
	EventName          string
	Description        string
	Idea               string
	EventType          string
	GenderRequirement  string
	TeamSize           int
	RequiredSkills     []string
	Location           string
	Coords             *Coordinates
	CreatedAt          time.Time
	ApplicationsClosed bool
}

type ScoreBreakdown struct {
	Skill         float64
	Complementary float64
	Rarity        float64
	EventType     float64
	Recency       float64
	Location      float64
	Text          float64
}

type RankedPost struct {
	Post       PostSnapshot
	Score      float64
	Components ScoreBreakdown
}

type RankedUser struct {
	User       UserSnapshot
	Score      float64
	SkillScore float64
	GeoScore   float64
}

func (u UserSnapshot) HasAppliedTo(postID uuid.UUID) bool {
	return containsID(u.AppliedPostIDs, postID)
}

func (u UserSnapshot) IsTeammateOn(postID uuid.UUID) bool {
	return containsID(u.TeammatePostIDs, postID)
}

// ColdStart reports whether the user carries no signal at all: no skills,
// no application history and no bio.
func (u UserSnapshot) ColdStart() bool {
	return len(u.Skills) == 0 && len(u.AppliedPostIDs) == 0 && trimmed(u.Bio) == ""
}

func (u UserSnapshot) SkillNames() []string {
	out := make([]string, 0, len(u.Skills))
	for _, s := range u.Skills {
		out = append(out, s.Name)
	}
	return out
}

func (p PostSnapshot) Text() string {
	d := trimmed(p.Description)
	i := trimmed(p.Idea)
	if d == "" {
		return i
	}
	if i == "" {
		return d
	}
	return d + " " + i
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
