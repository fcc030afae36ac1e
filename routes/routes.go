package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"opsdash-backend/controllers"
	"opsdash-backend/metrics"
	"opsdash-backend/middleware"
	"opsdash-backend/utils"
)

// Controllers bundles every handler the router mounts.
type Controllers struct {
	Auth       *controllers.AuthController
	Settings   *controllers.SettingsController
	Employers  *controllers.EmployerController
	Properties *controllers.PropertyController
	Appliances *controllers.ApplianceController
	Retreats   *controllers.RetreatController
	Guests     *controllers.GuestController
	Staff      *controllers.StaffController
	Facilities *controllers.FacilityController
	Bookings   *controllers.BookingController
	Expenses   *controllers.ExpenseController
	Reports    *controllers.ReportController
}

type Options struct {
	Logger      zerolog.Logger
	CORSOrigins []string
	Tokens      middleware.TokenParser
	// Limiter throttles the authenticated API per tenant.
	Limiter *middleware.RateLimiter
	// LoginLimiter throttles /api/auth/login per client IP.
	LoginLimiter *middleware.RateLimiter
}

func corsConfig(origins []string) cors.Config {
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter mounts the public endpoints and the tenant-scoped API.
func SetupRouter(ctl Controllers, opts Options) *gin.Engine {
	utils.RegisterValidators()

	r := gin.New()
	r.Use(
		middleware.RequestID(opts.Logger),
		middleware.Logger(),
		middleware.Recovery(),
		metrics.Middleware(),
		cors.New(corsConfig(opts.CORSOrigins)),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.NoRoute(func(c *gin.Context) {
		utils.JSONError(c, http.StatusNotFound, utils.KindNotFound, "Route not found")
	})

	auth := r.Group("/api/auth")
	{
		login := auth.Group("")
		if opts.LoginLimiter != nil {
			login.Use(opts.LoginLimiter.Handler())
		}
		login.POST("/login", ctl.Auth.Login)
	}

	api := r.Group("/api", middleware.RequireAuth(opts.Tokens))
	if opts.Limiter != nil {
		api.Use(opts.Limiter.Handler())
	}
	{
		api.GET("/auth/me", ctl.Auth.Me)

		settings := api.Group("/settings")
		{
			settings.GET("", ctl.Settings.GetSettings)
			settings.PUT("", ctl.Settings.UpdateSettings)
		}

		ctl.Employers.Register(api.Group("/employers"))
		ctl.Properties.Register(api.Group("/properties"))
		ctl.Appliances.Register(api.Group("/appliances"))

		bridge := api.Group("/bridge-retreats")
		{
			ctl.Retreats.Register(bridge.Group("/retreats"))
			ctl.Guests.Register(bridge.Group("/guests"))
			ctl.Staff.Register(bridge.Group("/staff"))
			ctl.Facilities.Register(bridge.Group("/facilities"))
			ctl.Bookings.Register(bridge.Group("/bookings"))
			ctl.Expenses.Register(bridge.Group("/expenses"))
			bridge.GET("/reports/overview", ctl.Reports.Overview)
		}
	}

	return r
}
