package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-service/internal/api/dto"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/service"
	apperrors "github.com/spec-kit/booking-service/pkg/util"
)

// ProvidersHandler exposes the provider directory and slot availability.
type ProvidersHandler struct {
	service *service.BookingService
	baseURL string
}

// NewProvidersHandler constructs handler.
func NewProvidersHandler(bookingService *service.BookingService, baseURL string) *ProvidersHandler {
	return &ProvidersHandler{service: bookingService, baseURL: baseURL}
}

// ListProviders GET /providers.
func (h *ProvidersHandler) ListProviders(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	providers, err := h.service.ListProviders(c.Context())
	if err != nil {
		return err
	}
	items := make([]*dto.UserResponse, 0, len(providers))
	for i := range providers {
		items = append(items, userResponse(&providers[i], h.baseURL))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Availability GET /providers/:providerId/available.
func (h *ProvidersHandler) Availability(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	day, err := parseDayQuery(c.Query("date"))
	if err != nil {
		return err
	}
	slots, err := h.service.Availability(c.Context(), c.Params("providerId"), day)
	if err != nil {
		return err
	}
	items := make([]dto.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		items = append(items, dto.SlotResponse{
			Time:      slot.Label,
			Value:     slot.At,
			Available: slot.Available,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// parseDayQuery accepts a unix millisecond timestamp or a YYYY-MM-DD date.
func parseDayQuery(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, apperrors.NewValidationError("date required", nil)
	}
	if millis, err := strconv.ParseInt(val, 10, 64); err == nil {
		return time.UnixMilli(millis), nil
	}
	day, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid date", map[string]any{"date": val})
	}
	return day, nil
}
