package dto

import "github.com/google/uuid"

type ApplicationResponse struct {
	ID     uuid.UUID `json:"id"`
	PostID uuid.UUID `json:"post_id"`
	UserID uuid.UUID `json:"user_id"`
	Status string    `json:"status"`
}
