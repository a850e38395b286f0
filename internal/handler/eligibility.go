package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/abdelhak4/NashidRoom-sub000/internal/middleware"
	"github.com/abdelhak4/NashidRoom-sub000/internal/service"
	"github.com/abdelhak4/NashidRoom-sub000/pkg/geo"
)

type EligibilityHandler struct {
	svc *service.EligibilityService
}

func NewEligibilityHandler(svc *service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{svc: svc}
}

// Get handles GET /api/events/:eventId/eligibility?lat=&lng=
// Returns the decision the ledger would reach for a vote attempt right now.
func (h *EligibilityHandler) Get(c fiber.Ctx) error {
	eventID, errMsg := middleware.ValidateEventID(c.Params("eventId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	userID := middleware.UserID(c)
	if userID == "" {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
	}

	var location *geo.Coordinate
	lat := fiber.Query[float64](c, "lat")
	lng := fiber.Query[float64](c, "lng")
	if c.Query("lat") != "" && c.Query("lng") != "" {
		location = &geo.Coordinate{Lat: lat, Lng: lng}
	}

	decision, err := h.svc.Check(c.Context(), eventID, userID, location, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to evaluate eligibility")
	}

	return c.JSON(decision)
}
