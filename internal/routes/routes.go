package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mina-rz/YogaStudioBack/internal/config"
	"github.com/mina-rz/YogaStudioBack/internal/handlers"
	"github.com/mina-rz/YogaStudioBack/internal/middleware"
	"github.com/mina-rz/YogaStudioBack/internal/repository"
	"github.com/mina-rz/YogaStudioBack/internal/services"
	"go.uber.org/zap"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *zap.SugaredLogger) {
	userRepo := repository.NewUserRepository(db)
	classTypeRepo := repository.NewClassTypeRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	sessionRepo := repository.NewClassSessionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	passRepo := repository.NewPassRepository(db)

	if cfg.PaymentProvider != "mock" {
		logger.Warnw("unsupported payment provider, falling back to mock", "provider", cfg.PaymentProvider)
	}
	checkout := services.NewMockCheckoutCreator("")
	var notifier services.Notifier
	if cfg.NotifierURL != "" {
		notifier = services.NewHTTPNotifier(cfg.NotifierURL, cfg.NotifierAPIKey)
	} else {
		notifier = services.NewLogNotifier(logger)
	}

	scheduleService := services.NewScheduleService(sessionRepo, classTypeRepo, instructorRepo, bookingRepo)
	bookingService := services.NewBookingService(db, bookingRepo, sessionRepo, paymentRepo, passRepo, instructorRepo, logger)
	paymentService := services.NewPaymentService(db, bookingRepo, paymentRepo, sessionRepo, classTypeRepo, userRepo, checkout, notifier, cfg.DefaultCurrency, logger)
	passService := services.NewPassService(passRepo, userRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	bookingHandler := handlers.NewBookingHandler(bookingService, paymentService)
	passHandler := handlers.NewPassHandler(passService)
	webhookHandler := handlers.NewWebhookHandler(paymentService, cfg, logger)
	adminHandler := handlers.NewAdminHandler(scheduleService, passService, paymentService, userRepo)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	// The schedule is browsable without an account.
	schedule := api.Group("/v1/schedule")
	schedule.Get("/sessions", scheduleHandler.ListSessions)
	schedule.Get("/sessions/:id", scheduleHandler.GetSession)
	schedule.Get("/sessions/:id/availability", scheduleHandler.GetAvailability)
	schedule.Get("/class-types", scheduleHandler.ListClassTypes)
	schedule.Get("/instructors", scheduleHandler.ListInstructors)

	api.Post("/v1/webhooks/payment", webhookHandler.HandlePaymentSucceeded)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	bookings := authProtected.Group("/bookings")
	bookings.Post("", bookingHandler.CreateBooking)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Put("/:id/status", bookingHandler.UpdateStatus)
	bookings.Delete("/:id", bookingHandler.CancelBooking)
	bookings.Post("/:id/checkout", bookingHandler.CreateCheckout)

	authProtected.Get("/passes", passHandler.ListMyPasses)

	admin := authProtected.Group("/admin", middleware.AdminOnly())
	admin.Post("/class-types", adminHandler.CreateClassType)
	admin.Put("/class-types/:id", adminHandler.UpdateClassType)
	admin.Delete("/class-types/:id", adminHandler.DeleteClassType)
	admin.Post("/instructors", adminHandler.CreateInstructor)
	admin.Put("/instructors/:id", adminHandler.UpdateInstructor)
	admin.Delete("/instructors/:id", adminHandler.DeleteInstructor)
	admin.Post("/sessions", adminHandler.CreateSession)
	admin.Put("/sessions/:id", adminHandler.UpdateSession)
	admin.Delete("/sessions/:id", adminHandler.DeleteSession)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/role", adminHandler.UpdateUserRole)
	admin.Post("/passes", adminHandler.GrantPass)
	admin.Get("/payments", adminHandler.ListPayments)
}
