package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-service/internal/api/http/handlers"
	"github.com/spec-kit/booking-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Providers      *handlers.ProvidersHandler
	Appointments   *handlers.AppointmentsHandler
	Schedule       *handlers.ScheduleHandler
	Notifications  *handlers.NotificationsHandler
	Files          *handlers.FilesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/users", cfg.Users.Register)
	app.Post("/sessions", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Put("/users", cfg.Users.UpdateProfile)
	protected.Post("/files", cfg.Files.UploadAvatar)

	protected.Get("/providers", cfg.Providers.ListProviders)
	protected.Get("/providers/:providerId/available", cfg.Providers.Availability)

	protected.Get("/appointments", cfg.Appointments.ListAppointments)
	protected.Post("/appointments", cfg.Appointments.CreateAppointment)
	protected.Delete("/appointments/:id", cfg.Appointments.CancelAppointment)

	protected.Get("/schedule", cfg.Schedule.ListSchedule)

	protected.Get("/notifications", cfg.Notifications.ListNotifications)
	protected.Put("/notifications/:id", cfg.Notifications.MarkRead)
}
