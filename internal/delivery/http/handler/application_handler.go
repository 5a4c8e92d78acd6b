package handler

import (
	"context"
	"errors"

	"hackmate/internal/delivery/http/dto"
	"hackmate/internal/delivery/http/middleware"
	"hackmate/internal/pkg/response"
	"hackmate/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	uc usecase.ApplicationUsecase
}

func NewApplicationHandler(uc usecase.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

// RegisterPostRoutes attaches the apply endpoint under /posts.
func (h *ApplicationHandler) RegisterPostRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/:id/applications", h.Apply)
}

// RegisterRoutes attaches the decision endpoints under /applications.
func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/:id/accept", h.Accept)
	r.Post("/:id/reject", h.Reject)
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	postID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid post id", nil, err)
	}

	res, err := h.uc.Apply(c.Context(), userID, postID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "applied", toApplicationResponse(res))
}

func (h *ApplicationHandler) Accept(c fiber.Ctx) error {
	return h.decide(c, h.uc.Accept)
}

func (h *ApplicationHandler) Reject(c fiber.Ctx) error {
	return h.decide(c, h.uc.Reject)
}

func (h *ApplicationHandler) decide(c fiber.Ctx, fn func(ctx context.Context, actorID, applicationID uuid.UUID) (usecase.ApplicationResult, error)) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	appID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid application id", nil, err)
	}

	res, err := fn(c.Context(), userID, appID)
	if err != nil {
		return mapApplicationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, toApplicationResponse(res))
}

func toApplicationResponse(res usecase.ApplicationResult) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:     res.ID,
		PostID: res.PostID,
		UserID: res.UserID,
		Status: string(res.Status),
	}
}

func mapApplicationUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrPostNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Post not found", nil, err)
	case errors.Is(err, usecase.ErrApplicationNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Application not found", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrOwnPost):
		return middleware.NewAppError(fiber.StatusConflict, "Cannot apply to own post", nil, err)
	case errors.Is(err, usecase.ErrAlreadyApplied):
		return middleware.NewAppError(fiber.StatusConflict, "Already applied", nil, err)
	case errors.Is(err, usecase.ErrApplicationsClosed):
		return middleware.NewAppError(fiber.StatusConflict, "Applications closed", nil, err)
	case errors.Is(err, usecase.ErrGenderRestricted):
		return middleware.NewAppError(fiber.StatusForbidden, "Post restricted by gender requirement", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid status transition", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
