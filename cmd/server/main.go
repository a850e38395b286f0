package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/abdelhak4/NashidRoom-sub000/internal/config"
	"github.com/abdelhak4/NashidRoom-sub000/internal/db"
	"github.com/abdelhak4/NashidRoom-sub000/internal/handler"
	"github.com/abdelhak4/NashidRoom-sub000/internal/middleware"
	"github.com/abdelhak4/NashidRoom-sub000/internal/repository"
	"github.com/abdelhak4/NashidRoom-sub000/internal/router"
	"github.com/abdelhak4/NashidRoom-sub000/internal/service"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "nashidroom-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	service.InitMetrics(pool)

	voteRepo := repository.NewVoteRepo(pool)
	trackRepo := repository.NewTrackRepo(pool)
	eventRepo := repository.NewEventRepo(pool)

	eligibilitySvc := service.NewEligibilityService(eventRepo, eventRepo)
	ledgerSvc := service.NewLedgerService(voteRepo, trackRepo, eligibilitySvc, cache)
	trackSvc := service.NewTrackService(trackRepo, voteRepo, cache)

	auditWorker := service.NewAuditWorker(voteRepo, trackRepo, cfg.AuditInterval, cfg.AuditLookback)
	go auditWorker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "NashidRoom API",
		ServerHeader: "NashidRoom",
	})

	router.Setup(app, &router.Handlers{
		Vote:        handler.NewVoteHandler(ledgerSvc),
		Track:       handler.NewTrackHandler(trackSvc),
		Eligibility: handler.NewEligibilityHandler(eligibilitySvc),
		Health:      handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("voting backend starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
