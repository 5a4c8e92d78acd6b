package handler

import (
	"errors"
	"strconv"

	"hackmate/internal/delivery/http/dto"
	"hackmate/internal/delivery/http/middleware"
	"hackmate/internal/pkg/response"
	"hackmate/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type PostFeedHandler struct {
	uc usecase.PostFeedUsecase
}

func NewPostFeedHandler(uc usecase.PostFeedUsecase) *PostFeedHandler {
	return &PostFeedHandler{uc: uc}
}

func (h *PostFeedHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.ListFeed)
}

func (h *PostFeedHandler) ListFeed(c fiber.Ctx) error {
	viewerID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	params := usecase.FeedParams{
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}

	items, err := h.uc.ListFeed(c.Context(), viewerID, params)
	if err != nil {
		return mapFeedUsecaseError(err)
	}

	out := make([]dto.FeedPostResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.FeedPostResponse{
			PostID:            it.PostID,
			CreatorName:       it.CreatorName,
			EventName:         it.EventName,
			Description:       it.Description,
			Idea:              it.Idea,
			EventType:         it.EventType,
			GenderRequirement: it.GenderRequirement,
			TeamSize:          it.TeamSize,
			Location:          it.Location,
			RequiredSkills:    it.RequiredSkills,
			CreatedAt:         it.CreatedAt,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func parseQueryInt(c fiber.Ctx, key string, defaultVal int) int {
	s := c.Query(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func mapFeedUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrUserNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
