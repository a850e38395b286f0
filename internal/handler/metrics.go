package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/abdelhak4/NashidRoom-sub000/internal/service"
)

// NewMetricsHandler exposes the Prometheus registry at GET /metrics.
// promhttp speaks net/http, so it is adapted onto fasthttp.
func NewMetricsHandler() fiber.Handler {
	promHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		promHandler(c.RequestCtx())
		return nil
	}
}

// NewMetricsMiddleware observes request durations per route pattern.
func NewMetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		if service.Metrics.RequestDuration != nil {
			endpoint := c.Route().Path
			service.Metrics.RequestDuration.
				WithLabelValues(endpoint, c.Method(), strconv.Itoa(c.Response().StatusCode())).
				Observe(time.Since(start).Seconds())
		}
		return err
	}
}
