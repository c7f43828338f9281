package routes

import (
	"net/http"

	"nailstudio-bot/config"
	"nailstudio-bot/controllers"
	"nailstudio-bot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controllers groups the handlers of the admin HTTP API.
type Controllers struct {
	Auth         *controllers.AuthController
	Dashboard    *controllers.DashboardController
	Reports      *controllers.ReportController
	Appointments *controllers.AppointmentController
	Customers    *controllers.CustomerController
	Services     *controllers.ServiceController
	Reminders    *controllers.ReminderController
	Reviews      *controllers.ReviewController
	Gallery      *controllers.GalleryController
	Broadcasts   *controllers.BroadcastController
	Profile      *controllers.ProfileController
}

func SetupRouter(cfg config.HTTPConfig, ctrl Controllers, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		origins[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return origins[origin]
		},
	}))

	r.Use(config.PerformanceLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := utils.AuthMiddleware(cfg.JWTSecret)

	auth := r.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.GET("/me", authMiddleware, ctrl.Auth.Me)
	}

	api := r.Group("/api")
	api.Use(authMiddleware)
	{
		api.GET("/dashboard", ctrl.Dashboard.GetDashboardOverview)
		api.GET("/reports", ctrl.Reports.GetReportAnalytics)

		appointments := api.Group("/appointments")
		{
			appointments.GET("", ctrl.Appointments.GetAppointments)
			appointments.POST("/:id/approve", ctrl.Appointments.Approve)
			appointments.POST("/:id/reject", ctrl.Appointments.Reject)
			appointments.POST("/:id/complete", ctrl.Appointments.Complete)
			appointments.POST("/:id/no-show", ctrl.Appointments.NoShow)
		}

		api.GET("/clients", ctrl.Customers.GetCustomers)
		api.GET("/services", ctrl.Services.GetServices)
		api.GET("/reminders", ctrl.Reminders.GetUpcomingReminders)

		reviews := api.Group("/reviews")
		{
			reviews.GET("", ctrl.Reviews.GetReviews)
			reviews.PUT("/:id/approval", ctrl.Reviews.SetApproval)
		}

		api.GET("/gallery", ctrl.Gallery.GetGallery)
		api.POST("/broadcasts", ctrl.Broadcasts.CreateBroadcast)
		api.GET("/salon", ctrl.Profile.GetProfile)
	}

	return r
}
