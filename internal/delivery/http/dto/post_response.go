package dto

import (
	"time"

	"github.com/google/uuid"
)

type FeedPostResponse struct {
	PostID            uuid.UUID `json:"post_id"`
	CreatorName       string    `json:"creator_name"`
	EventName         string    `json:"event_name"`
	Description       string    `json:"description"`
	Idea              string    `json:"idea"`
	EventType         string    `json:"event_type"`
	GenderRequirement string    `json:"gender_requirement"`
	TeamSize          int       `json:"team_size"`
	Location          string    `json:"location"`
	RequiredSkills    []string  `json:"required_skills"`
	CreatedAt         time.Time `json:"created_at"`
}
