package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/studio_be/internal/config"
	"github.com/Windi-Fikriyansyah/studio_be/internal/db"
	"github.com/Windi-Fikriyansyah/studio_be/internal/logger"
	"github.com/Windi-Fikriyansyah/studio_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/studio_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/studio_be/internal/services/tripay"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Options{ServiceName: "studio-api"})
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := logger.New(logger.Options{ServiceName: "studio-api", Level: cfg.LogLevel, Format: cfg.LogFormat})

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	if err := db.AutoMigrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis tidak bisa dihubungi")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis aktif")

	hub := realtime.NewHub(log)
	go hub.Run(ctx.Done())
	notifier := realtime.NewNotifier(hub, rdb, log)
	go notifier.Run(ctx)

	var gateway *tripay.TripayService
	var settlementCard uuid.UUID
	if cfg.TripayEnabled() {
		gateway = tripay.NewTripayService(tripay.Config{
			APIKey:       cfg.TripayAPIKey,
			PrivateKey:   cfg.TripayPrivateKey,
			MerchantCode: cfg.TripayMerchantCode,
			Env:          cfg.TripayEnv,
			AppBaseURL:   cfg.AppBaseURL,
		})
		if settlementCard, err = uuid.Parse(cfg.TripaySettlementCardID); err != nil {
			log.Fatal().Err(err).Msg("TRIPAY_SETTLEMENT_CARD_ID tidak valid")
		}
	} else {
		log.Warn().Msg("tripay tidak dikonfigurasi, pembayaran online nonaktif")
	}

	app := fiber.New(fiber.Config{
		AppName:      "studio-api",
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    12 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.IdempotencyHeader + ", " + middleware.RequestIDHeader,
		ExposeHeaders:    "Content-Length, Content-Disposition, " + middleware.ReplayHeader,
		AllowCredentials: true,
	}))

	registerRoutes(app, deps{
		cfg:      cfg,
		log:      log,
		db:       gdb,
		rdb:      rdb,
		hub:      hub,
		notifier: notifier,
		tripay:   gateway,
		cardID:   settlementCard,
	})

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Error().Err(err).Msg("server berhenti")
			stop()
		}
	}()
	log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("studio api berjalan")

	<-ctx.Done()
	shutdown(app, log)
}

func shutdown(app *fiber.App, log zerolog.Logger) {
	log.Info().Msg("mematikan server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
