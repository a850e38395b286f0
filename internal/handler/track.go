package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/abdelhak4/NashidRoom-sub000/internal/middleware"
	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
	"github.com/abdelhak4/NashidRoom-sub000/internal/service"
)

type TrackHandler struct {
	svc *service.TrackService
}

func NewTrackHandler(svc *service.TrackService) *TrackHandler {
	return &TrackHandler{svc: svc}
}

// GetRanking handles GET /api/events/:eventId/tracks
// Returns the ranked track list; when the caller is authenticated the
// response also carries their current vote directions for reconciliation.
func (h *TrackHandler) GetRanking(c fiber.Ctx) error {
	eventID, errMsg := middleware.ValidateEventID(c.Params("eventId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.GetRanking(c.Context(), eventID, middleware.UserID(c))
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch tracks")
	}

	return c.JSON(resp)
}

// Add handles POST /api/events/:eventId/tracks
func (h *TrackHandler) Add(c fiber.Ctx) error {
	eventID, errMsg := middleware.ValidateEventID(c.Params("eventId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.TrackAddRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	title, errMsg := middleware.ValidateTitle(req.Title)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	artist := middleware.ValidateArtist(req.Artist)

	track, err := h.svc.AddTrack(c.Context(), eventID, title, artist)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add track")
	}

	return c.Status(fiber.StatusCreated).JSON(track)
}
