package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-service/internal/api/dto"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/service"
	apperrors "github.com/spec-kit/booking-service/pkg/util"
)

// AppointmentsHandler manages the requester-facing appointment endpoints.
type AppointmentsHandler struct {
	service *service.BookingService
	baseURL string
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(bookingService *service.BookingService, baseURL string) *AppointmentsHandler {
	return &AppointmentsHandler{service: bookingService, baseURL: baseURL}
}

// CreateAppointment POST /appointments.
func (h *AppointmentsHandler) CreateAppointment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	appt, err := h.service.CreateAppointment(c.Context(), principal.User.ID, req.ProviderID, req.Date)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": appointmentResponse(appt, h.service.Now(), h.baseURL)})
}

// ListAppointments GET /appointments.
func (h *AppointmentsHandler) ListAppointments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	page := parseInt(c.Query("page"), 1)
	appointments, err := h.service.ListRequesterAppointments(c.Context(), principal.User.ID, page)
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

// CancelAppointment DELETE /appointments/:id.
func (h *AppointmentsHandler) CancelAppointment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	appt, err := h.service.CancelAppointment(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt, h.service.Now(), h.baseURL)})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
