package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/booking-service/internal/domain"
)

// FileRepository encapsulates uploaded file metadata persistence.
type FileRepository interface {
	Create(ctx context.Context, file *domain.File) error
	GetByID(ctx context.Context, id string) (*domain.File, error)
}

type fileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository instantiates repository.
func NewFileRepository(pool *pgxpool.Pool) FileRepository {
	return &fileRepository{pool: pool}
}

func (r *fileRepository) Create(ctx context.Context, file *domain.File) error {
	const query = `
        INSERT INTO files (name, path)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query, file.Name, file.Path).Scan(&file.ID, &file.CreatedAt)
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*domain.File, error) {
	const query = `
        SELECT id, name, path, created_at
        FROM files WHERE id=$1`

	var file domain.File
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Name,
		&file.Path,
		&file.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &file, nil
}
