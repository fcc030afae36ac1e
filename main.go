package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"opsdash-backend/config"
	"opsdash-backend/controllers"
	"opsdash-backend/middleware"
	"opsdash-backend/models"
	"opsdash-backend/routes"
	"opsdash-backend/services"
)

func main() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		boot := config.NewLogger("info", "json", os.Stderr)
		boot.Fatal().Err(err).Msg("load configuration")
	}

	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if !envLoaded {
		logger.Info().Msg(".env not found; using process environment")
	}
	gin.SetMode(cfg.GinMode)

	db, err := config.ConnectDatabase(cfg.DB, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	if cfg.SeedDemo {
		if err := config.SeedDatabase(db, cfg.DemoEmail, cfg.DemoPassword, logger); err != nil {
			logger.Fatal().Err(err).Msg("seed demo tenant")
		}
	}

	ratio, _ := cfg.PartialRatio()

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL)
	bookingService := services.NewBookingService(db, ratio, cfg.FallbackPaymentMethod)
	expenseService := services.NewExpenseService(db)
	reportService := services.NewReportService(db)
	settingsService := services.NewSettingsService(db)

	ctl := routes.Controllers{
		Auth:       controllers.NewAuthController(authService),
		Settings:   controllers.NewSettingsController(settingsService),
		Employers:  controllers.NewEmployerController(services.NewOwnedStore[models.Employer](db, "Employer")),
		Properties: controllers.NewPropertyController(services.NewOwnedStore[models.Property](db, "Property")),
		Appliances: controllers.NewApplianceController(services.NewOwnedStore[models.Appliance](db, "Appliance")),
		Retreats:   controllers.NewRetreatController(services.NewOwnedStore[models.Retreat](db, "Retreat")),
		Guests:     controllers.NewGuestController(services.NewOwnedStore[models.Guest](db, "Guest")),
		Staff:      controllers.NewStaffController(services.NewOwnedStore[models.Staff](db, "Staff member")),
		Facilities: controllers.NewFacilityController(services.NewOwnedStore[models.Facility](db, "Facility")),
		Bookings:   controllers.NewBookingController(bookingService),
		Expenses:   controllers.NewExpenseController(expenseService),
		Reports:    controllers.NewReportController(reportService),
	}

	limiter := middleware.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
	loginLimiter := middleware.NewRateLimiter(1, 5)
	stop := make(chan struct{})
	limiter.StartCleanup(time.Minute, stop)
	loginLimiter.StartCleanup(time.Minute, stop)

	router := routes.SetupRouter(ctl, routes.Options{
		Logger:       logger,
		CORSOrigins:  cfg.ParseCORSOrigins(),
		Tokens:       authService,
		Limiter:      limiter,
		LoginLimiter: loginLimiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info().Msg("server stopped")
}
