package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/abdelhak4/NashidRoom-sub000/internal/handler"
	"github.com/abdelhak4/NashidRoom-sub000/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Vote        *handler.VoteHandler
	Track       *handler.TrackHandler
	Eligibility *handler.EligibilityHandler
	Health      *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.NewMetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(middleware.NewIdentity())

	// Health checks (before API group, no auth needed)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus scrape endpoint
	app.Get("/metrics", handler.NewMetricsHandler())

	voteLimiter := middleware.NewVoteRateLimiter()
	trackReadLimiter := middleware.NewTrackReadRateLimiter()
	trackAddLimiter := middleware.NewTrackAddRateLimiter()

	api := app.Group("/api")

	// Vote routes — identity required, toggle semantics live in the ledger
	api.Post("/events/:eventId/votes", h.Vote.Cast, middleware.RequireIdentity(), voteLimiter.Handler())
	api.Delete("/events/:eventId/votes", h.Vote.Remove, middleware.RequireIdentity(), voteLimiter.Handler())

	// Track routes — ranked reads are anonymous-friendly (user votes are
	// only attached when an identity is present)
	api.Get("/events/:eventId/tracks", h.Track.GetRanking, trackReadLimiter.Handler())
	api.Post("/events/:eventId/tracks", h.Track.Add, middleware.RequireIdentity(), trackAddLimiter.Handler())

	// Eligibility probe
	api.Get("/events/:eventId/eligibility", h.Eligibility.Get)
}
