package handlers

import (
	"time"

	"github.com/spec-kit/booking-service/internal/api/dto"
	"github.com/spec-kit/booking-service/internal/domain"
)

func fileResponse(file *domain.File, baseURL string) *dto.FileResponse {
	if file == nil {
		return nil
	}
	return &dto.FileResponse{
		ID:   file.ID,
		Name: file.Name,
		Path: file.Path,
		URL:  file.URL(baseURL),
	}
}

func userResponse(user *domain.User, baseURL string) *dto.UserResponse {
	if user == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Provider: user.Provider,
		Avatar:   fileResponse(user.Avatar, baseURL),
	}
}

func appointmentResponse(appt *domain.Appointment, now time.Time, baseURL string) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:          appt.ID,
		ScheduledAt: appt.ScheduledAt,
		CanceledAt:  appt.CanceledAt,
		Past:        appt.Past(now),
		Cancelable:  appt.Active() && appt.Cancelable(now),
		Provider:    userResponse(appt.Provider, baseURL),
		Requester:   userResponse(appt.Requester, baseURL),
		CreatedAt:   appt.CreatedAt,
	}
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Content:   n.Content,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
