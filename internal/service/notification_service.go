package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/config"
	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/queue"
	"github.com/spec-kit/booking-service/internal/repository"
	apperrors "github.com/spec-kit/booking-service/pkg/util"
)

const notificationPageSize = 20

// NotificationService persists provider notifications and processes the
// asynchronous notification jobs on the worker side.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes the worker to notification job kinds.
func (n *NotificationService) RegisterHandlers(worker *queue.Worker) {
	if worker == nil {
		return
	}
	worker.Register(queue.JobBookingNotification, n.handleBookingNotification)
	worker.Register(queue.JobCancellationMail, n.handleCancellationMail)
}

// ListForProvider returns the caller's notifications, newest first.
func (n *NotificationService) ListForProvider(ctx context.Context, userID string) ([]domain.Notification, error) {
	if _, err := n.users.GetProvider(ctx, userID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewForbidden("only providers can load notifications")
		}
		return nil, err
	}
	return n.notifications.ListByUser(ctx, userID, notificationPageSize)
}

// MarkRead flags one notification as read and returns the updated record.
func (n *NotificationService) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	notification, err := n.notifications.MarkRead(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("notification", map[string]any{"notification_id": id})
		}
		return nil, err
	}
	return notification, nil
}

func (n *NotificationService) handleBookingNotification(ctx context.Context, job queue.Job) error {
	var payload queue.BookingNotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return err
	}

	notification := &domain.Notification{
		UserID:  payload.ProviderID,
		Content: fmt.Sprintf("New appointment from %s on %s", payload.RequesterName, formatSlot(payload.ScheduledAt)),
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return err
	}
	n.logger.Info("booking notification stored",
		zap.String("job_id", job.ID),
		zap.String("provider_id", payload.ProviderID))
	return nil
}

func (n *NotificationService) handleCancellationMail(ctx context.Context, job queue.Job) error {
	var payload queue.CancellationMailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return err
	}

	// Mail delivery stub; real transport would go here.
	n.logger.Info("sending cancellation mail",
		zap.String("job_id", job.ID),
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", payload.ProviderEmail),
		zap.String("provider", payload.ProviderName),
		zap.String("requester", payload.RequesterName),
		zap.String("scheduled_at", formatSlot(payload.ScheduledAt)),
		zap.Time("canceled_at", payload.CanceledAt))
	return nil
}

// formatSlot renders a slot instant for human-readable notification text.
func formatSlot(t time.Time) string {
	return t.Format("January 2 at 15:04")
}
