package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nailstudio-bot/bot"
	"nailstudio-bot/config"
	"nailstudio-bot/controllers"
	"nailstudio-bot/routes"
	"nailstudio-bot/services"
	"nailstudio-bot/store"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := config.InitLogger(cfg.App.LogPath, cfg.App.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Application stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDB(cfg.Database, cfg.App.Debug)
	if err != nil {
		return err
	}
	st := store.NewGormStore(db)
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Connected to database")

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	api.Debug = cfg.App.Debug
	logger.Info("Bot authorized", zap.String("username", api.Self.UserName))

	var dispatcher services.Dispatcher = bot.NewTelegramDispatcher(api)
	if cfg.Twilio.Enabled {
		dispatcher = services.FallbackDispatcher{dispatcher, services.NewTwilioDispatcher(cfg.Twilio)}
		logger.Info("Twilio fallback enabled")
	}

	sessions := services.NewSessionStore(cfg.Sessions.TTL)
	reminders := services.NewReminderService(st, dispatcher, cfg, sessions, logger)
	svc := bot.Services{
		Sessions:     sessions,
		Users:        services.NewUserService(st, dispatcher, cfg, logger),
		Booking:      services.NewBookingMachine(st, sessions, cfg, reminders, dispatcher, logger),
		Appointments: services.NewAppointmentService(st, dispatcher, cfg, logger),
		Admin:        services.NewAdminService(st, sessions, dispatcher, cfg, logger),
		Gallery:      services.NewGalleryService(st, cfg, logger),
		Reviews:      services.NewReviewService(st, sessions, cfg, logger),
	}

	scheduler, err := reminders.StartScheduler(ctx)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	var server *http.Server
	if cfg.HTTP.Enabled {
		server = newServer(cfg, svc, reminders, logger)
		go func() {
			logger.Info("HTTP API listening", zap.String("port", cfg.HTTP.Port))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", zap.Error(err))
				stop()
			}
		}()
	}

	handler := bot.NewHandler(api, api.Self.UserName, svc, cfg, logger)
	bot.Run(ctx, api, handler, cfg.Telegram.PollTimeout, logger)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", zap.Error(err))
		}
	}
	return nil
}

func newServer(cfg *config.Config, svc bot.Services, reminders *services.ReminderService, logger *zap.Logger) *http.Server {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := routes.SetupRouter(cfg.HTTP, routes.Controllers{
		Auth:         controllers.NewAuthController(cfg.Admin, cfg.HTTP),
		Dashboard:    controllers.NewDashboardController(svc.Admin),
		Reports:      controllers.NewReportController(svc.Admin),
		Appointments: controllers.NewAppointmentController(svc.Appointments),
		Customers:    controllers.NewCustomerController(svc.Users),
		Services:     controllers.NewServiceController(cfg.Catalog),
		Reminders:    controllers.NewReminderController(reminders),
		Reviews:      controllers.NewReviewController(svc.Reviews),
		Gallery:      controllers.NewGalleryController(svc.Gallery),
		Broadcasts:   controllers.NewBroadcastController(svc.Admin),
		Profile:      controllers.NewProfileController(cfg.Salon, cfg.Loyalty),
	}, logger)
	if cfg.App.Debug {
		printRoutes(r)
	}

	return &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
