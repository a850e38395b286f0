package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/abdelhak4/NashidRoom-sub000/internal/middleware"
	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
	"github.com/abdelhak4/NashidRoom-sub000/internal/service"
	"github.com/abdelhak4/NashidRoom-sub000/pkg/geo"
)

type VoteHandler struct {
	svc *service.LedgerService
}

func NewVoteHandler(svc *service.LedgerService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Cast handles POST /api/events/:eventId/votes
func (h *VoteHandler) Cast(c fiber.Ctx) error {
	eventID, errMsg := middleware.ValidateEventID(c.Params("eventId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	trackID, errMsg := middleware.ValidateTrackID(req.TrackID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if errMsg := middleware.ValidateDirection(req.Direction); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var location *geo.Coordinate
	if req.Lat != nil && req.Lng != nil {
		location = &geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}

	net, err := h.svc.CastVote(c.Context(), service.CastVoteInput{
		EventID:   eventID,
		TrackID:   trackID,
		UserID:    middleware.UserID(c),
		Direction: req.Direction,
		Location:  location,
	})
	if err != nil {
		return voteError(c, err)
	}

	return c.JSON(model.VoteResponse{Success: true, TrackID: trackID, NetVotes: net})
}

// Remove handles DELETE /api/events/:eventId/votes
func (h *VoteHandler) Remove(c fiber.Ctx) error {
	eventID, errMsg := middleware.ValidateEventID(c.Params("eventId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.VoteDeleteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	trackID, errMsg := middleware.ValidateTrackID(req.TrackID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	net, err := h.svc.RemoveVote(c.Context(), eventID, trackID, middleware.UserID(c))
	if err != nil {
		return voteError(c, err)
	}

	return c.JSON(model.VoteResponse{Success: true, TrackID: trackID, NetVotes: net})
}

// voteError maps ledger errors onto the API error envelope.
func voteError(c fiber.Ctx, err error) error {
	var denied *model.EligibilityDeniedError
	var inconsistent *model.InconsistentWriteError

	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
	case errors.As(err, &denied):
		if denied.Reason == model.ReasonLocationUnavailable {
			return eligibilityDeniedResponse(c, "LOCATION_UNAVAILABLE", denied.Reason,
				"Location is required for this event and could not be determined")
		}
		return eligibilityDeniedResponse(c, "ELIGIBILITY_DENIED", denied.Reason, "Voting is not permitted")
	case errors.Is(err, model.ErrVoteNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Vote not found")
	case errors.As(err, &inconsistent):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "INCONSISTENT_WRITE",
			"Vote recorded but count verification failed; counts will converge on the next refresh")
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process vote")
	}
}

func eligibilityDeniedResponse(c fiber.Ctx, code string, reason model.EligibilityReason, message string) error {
	status := fiber.StatusForbidden
	if code == "LOCATION_UNAVAILABLE" {
		// Not a denial: the caller should request location access.
		status = fiber.StatusPreconditionRequired
	}
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"reason":  reason,
		},
	})
}
