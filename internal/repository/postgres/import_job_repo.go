package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"winelist/internal/domain"
	"winelist/internal/port"
)

type importJobRepo struct {
	db *sqlx.DB
}

// NewImportJobRepo creates a PostgreSQL-backed ImportJobRepository.
func NewImportJobRepo(db *sqlx.DB) port.ImportJobRepository {
	return &importJobRepo{db: db}
}

func (r *importJobRepo) Create(ctx context.Context, job *domain.ImportJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ocr_import_jobs (id, ristorante_id, status, file_bucket, file_path, file_mime, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ID, job.RistoranteID, job.Status, job.FileBucket, job.FilePath, job.FileMime,
		job.Progress, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("importJobRepo.Create: %w", err)
	}
	return nil
}

func (r *importJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	var job domain.ImportJob
	err := r.db.GetContext(ctx, &job,
		`SELECT id, ristorante_id, status, file_bucket, file_path, file_mime, progress, created_at, updated_at
		FROM ocr_import_jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("importJobRepo.GetByID: %w", err)
	}
	return &job, nil
}

// UpdateStatus writes status, progress and file_mime.
func (r *importJobRepo) UpdateStatus(ctx context.Context, job *domain.ImportJob) error {
	job.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE ocr_import_jobs SET status = $1, progress = $2, file_mime = $3, updated_at = $4 WHERE id = $5`,
		job.Status, job.Progress, job.FileMime, job.UpdatedAt, job.ID)
	if err != nil {
		return fmt.Errorf("importJobRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}
