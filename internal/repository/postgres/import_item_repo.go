package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"winelist/internal/domain"
	"winelist/internal/port"
)

type importItemRepo struct {
	db *sqlx.DB
}

// NewImportItemRepo creates a PostgreSQL-backed ImportItemRepository.
func NewImportItemRepo(db *sqlx.DB) port.ImportItemRepository {
	return &importItemRepo{db: db}
}

// CreateBatch inserts all rows in one statement. created_at is offset by one
// microsecond per row so ListByJob returns the list order.
func (r *importItemRepo) CreateBatch(ctx context.Context, items []domain.ImportItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
	}

	query := `INSERT INTO ocr_import_items (id, job_id, raw_line, name_guess, price_guess, grapes_guess, confidence, created_at)
		VALUES (:id, :job_id, :raw_line, :name_guess, :price_guess, :grapes_guess, :confidence, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, items); err != nil {
		return fmt.Errorf("importItemRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *importItemRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.ImportItem, error) {
	items := []domain.ImportItem{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT id, job_id, raw_line, name_guess, price_guess, grapes_guess, confidence, created_at
		FROM ocr_import_items WHERE job_id = $1 ORDER BY created_at, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("importItemRepo.ListByJob: %w", err)
	}
	return items, nil
}
