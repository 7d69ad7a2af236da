package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/booking-service/internal/domain"
)

// AppointmentRepository encapsulates appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	Update(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ExistsActiveAt(ctx context.Context, providerID string, at time.Time) (bool, error)
	ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]domain.Appointment, error)
	ListForProviderBetween(ctx context.Context, providerID string, from, to time.Time) ([]domain.Appointment, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, raised by the partial index on active (provider_id, scheduled_at).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (requester_id, provider_id, scheduled_at)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		appt.RequesterID,
		appt.ProviderID,
		appt.ScheduledAt,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET canceled_at=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, appt.CanceledAt, appt.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	const query = `
        SELECT a.id, a.requester_id, a.provider_id, a.scheduled_at, a.canceled_at,
               a.created_at, a.updated_at,
               requester.name, requester.email,
               provider.name, provider.email
        FROM appointments a
        JOIN users requester ON requester.id = a.requester_id
        JOIN users provider ON provider.id = a.provider_id
        WHERE a.id=$1`

	var appt domain.Appointment
	var requester, provider domain.User
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.RequesterID,
		&appt.ProviderID,
		&appt.ScheduledAt,
		&appt.CanceledAt,
		&appt.CreatedAt,
		&appt.UpdatedAt,
		&requester.Name,
		&requester.Email,
		&provider.Name,
		&provider.Email,
	); err != nil {
		return nil, err
	}
	requester.ID = appt.RequesterID
	provider.ID = appt.ProviderID
	appt.Requester = &requester
	appt.Provider = &provider
	return &appt, nil
}

func (r *appointmentRepository) ExistsActiveAt(ctx context.Context, providerID string, at time.Time) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM appointments
            WHERE provider_id=$1 AND scheduled_at=$2 AND canceled_at IS NULL
        )`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, providerID, at).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *appointmentRepository) ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]domain.Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
        SELECT a.id, a.requester_id, a.provider_id, a.scheduled_at, a.canceled_at,
               a.created_at, a.updated_at,
               provider.name, provider.email, f.id, f.name, f.path
        FROM appointments a
        JOIN users provider ON provider.id = a.provider_id
        LEFT JOIN files f ON f.id = provider.avatar_id
        WHERE a.requester_id=$1 AND a.canceled_at IS NULL
        ORDER BY a.scheduled_at
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, requesterID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		var appt domain.Appointment
		var provider domain.User
		var avatarID, avatarName, avatarPath *string
		if err := rows.Scan(
			&appt.ID,
			&appt.RequesterID,
			&appt.ProviderID,
			&appt.ScheduledAt,
			&appt.CanceledAt,
			&appt.CreatedAt,
			&appt.UpdatedAt,
			&provider.Name,
			&provider.Email,
			&avatarID,
			&avatarName,
			&avatarPath,
		); err != nil {
			return nil, err
		}
		provider.ID = appt.ProviderID
		if avatarID != nil {
			provider.Avatar = &domain.File{ID: *avatarID, Name: *avatarName, Path: *avatarPath}
		}
		appt.Provider = &provider
		result = append(result, appt)
	}
	return result, rows.Err()
}

func (r *appointmentRepository) ListForProviderBetween(ctx context.Context, providerID string, from, to time.Time) ([]domain.Appointment, error) {
	const query = `
        SELECT a.id, a.requester_id, a.provider_id, a.scheduled_at, a.canceled_at,
               a.created_at, a.updated_at,
               requester.name, requester.email
        FROM appointments a
        JOIN users requester ON requester.id = a.requester_id
        WHERE a.provider_id=$1 AND a.canceled_at IS NULL
          AND a.scheduled_at BETWEEN $2 AND $3
        ORDER BY a.scheduled_at`

	rows, err := r.pool.Query(ctx, query, providerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		var appt domain.Appointment
		var requester domain.User
		if err := rows.Scan(
			&appt.ID,
			&appt.RequesterID,
			&appt.ProviderID,
			&appt.ScheduledAt,
			&appt.CanceledAt,
			&appt.CreatedAt,
			&appt.UpdatedAt,
			&requester.Name,
			&requester.Email,
		); err != nil {
			return nil, err
		}
		requester.ID = appt.RequesterID
		appt.Requester = &requester
		result = append(result, appt)
	}
	return result, rows.Err()
}
