package handler

import (
	"errors"

	"hackmate/internal/delivery/http/dto"
	"hackmate/internal/delivery/http/middleware"
	"hackmate/internal/pkg/response"
	"hackmate/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RecommendationHandler struct {
	posts      usecase.PostRecommendationUsecase
	applicants usecase.ApplicantRecommendationUsecase
}

func NewRecommendationHandler(posts usecase.PostRecommendationUsecase, applicants usecase.ApplicantRecommendationUsecase) *RecommendationHandler {
	return &RecommendationHandler{posts: posts, applicants: applicants}
}

func (h *RecommendationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/recommendations", h.GetPostRecommendations)
	r.Get("/:id/applicants/recommendations", h.GetApplicantRecommendations)
}

func (h *RecommendationHandler) GetPostRecommendations(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	limit := parseQueryInt(c, "limit", 10)

	items, err := h.posts.GetForUser(c.Context(), userID, limit)
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}

	out := make([]dto.RankedPostResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.RankedPostResponse{
			PostID:         it.PostID,
			EventName:      it.EventName,
			Description:    it.Description,
			Idea:           it.Idea,
			EventType:      it.EventType,
			Location:       it.Location,
			RequiredSkills: it.RequiredSkills,
			Score:          it.Score,
			Breakdown: dto.RankedPostBreakdown{
				Text:          it.TextScore,
				Skill:         it.SkillScore,
				Location:      it.LocationScore,
				Complementary: it.ComplementaryScore,
			},
			CreatedAt: it.CreatedAt,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *RecommendationHandler) GetApplicantRecommendations(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid post id", nil, err)
	}

	limit := parseQueryInt(c, "limit", 10)

	items, err := h.applicants.GetForPost(c.Context(), userID, postID, limit)
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}

	out := make([]dto.RankedApplicantResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.RankedApplicantResponse{
			UserID:     it.UserID,
			Bio:        it.Bio,
			Location:   it.Location,
			Skills:     it.Skills,
			Score:      it.Score,
			SkillScore: it.SkillScore,
			GeoScore:   it.GeoScore,
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func mapRecommendationUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrUserNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
	case errors.Is(err, usecase.ErrPostNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Post not found", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
