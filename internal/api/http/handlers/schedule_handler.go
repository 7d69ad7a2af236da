package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-service/internal/api/dto"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/service"
	apperrors "github.com/spec-kit/booking-service/pkg/util"
)

// ScheduleHandler exposes a provider's own agenda for a day.
type ScheduleHandler struct {
	service *service.BookingService
	baseURL string
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(bookingService *service.BookingService, baseURL string) *ScheduleHandler {
	return &ScheduleHandler{service: bookingService, baseURL: baseURL}
}

// ListSchedule GET /schedule.
func (h *ScheduleHandler) ListSchedule(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	// Without a date the schedule covers the current day.
	var day time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := parseDayQuery(raw)
		if err != nil {
			return err
		}
		day = parsed
	}
	appointments, err := h.service.ProviderSchedule(c.Context(), principal.User.ID, day)
	if err != nil {
		return err
	}
	now := h.service.Now()
	items := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		items = append(items, appointmentResponse(&appointments[i], now, h.baseURL))
	}
	return c.JSON(fiber.Map{"data": items})
}
