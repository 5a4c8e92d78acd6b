package dto

import (
	"time"

	"github.com/google/uuid"
)

type RankedPostResponse struct {
	PostID         uuid.UUID           `json:"post_id"`
	EventName      string              `json:"event_name"`
	Description    string              `json:"description"`
	Idea           string              `json:"idea"`
	EventType      string              `json:"event_type"`
	Location       string              `json:"location"`
	RequiredSkills []string            `json:"required_skills"`
	Score          float64             `json:"score"`
	Breakdown      RankedPostBreakdown `json:"breakdown"`
	CreatedAt      time.Time           `json:"created_at"`
}

type RankedPostBreakdown struct {
	Text          float64 `json:"text"`
	Skill         float64 `json:"skill"`
	Location      float64 `json:"location"`
	Complementary float64 `json:"complementary"`
}

type RankedApplicantResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	Bio        string    `json:"bio"`
	Location   string    `json:"location"`
	Skills     []string  `json:"skills"`
	Score      float64   `json:"score"`
	SkillScore float64   `json:"skill_score"`
	GeoScore   float64   `json:"geo_score"`
}
