package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winelist/internal/domain"
	"winelist/internal/repository/postgres"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// "pgx" selects $n bind vars for named queries
	return sqlx.NewDb(db, "pgx"), mock
}

func TestRestaurantRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewRestaurantRepo(db)
	id, owner := uuid.New(), uuid.New()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, subscription_plan, subscription_status FROM ristoranti WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "name", "subscription_plan", "subscription_status"}).
				AddRow(id.String(), owner.String(), "Osteria", "pro", nil))

		r, err := repo.GetByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, owner, r.OwnerID)
		assert.Equal(t, "pro", r.SubscriptionPlan)
		assert.False(t, r.SubscriptionStatus.Valid)
		assert.True(t, r.CanImportOCR())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, owner_id").WithArgs(id).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), id)

		assert.ErrorIs(t, err, domain.ErrRestaurantNotFound)
	})

	t.Run("db failure wrapped", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, owner_id").WithArgs(id).WillReturnError(errors.New("conn reset"))

		_, err := repo.GetByID(context.Background(), id)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "restaurantRepo.GetByID")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportJobRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewImportJobRepo(db)
	restID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ocr_import_jobs")).
		WithArgs(sqlmock.AnyArg(), restID, "processing", "wine-lists", "r/carta.pdf", "", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &domain.ImportJob{
		RistoranteID: restID,
		Status:       domain.JobStatusProcessing,
		FileBucket:   "wine-lists",
		FilePath:     "r/carta.pdf",
	}
	err := repo.Create(context.Background(), job)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.False(t, job.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportJobRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewImportJobRepo(db)
	id, restID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM ocr_import_jobs WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ristorante_id", "status", "file_bucket", "file_path", "file_mime", "progress", "created_at", "updated_at"}).
			AddRow(id.String(), restID.String(), "done", "b", "p.jpg", "image/jpeg", 100, now, now))

	job, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusDone, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, restID, job.RistoranteID)

	mock.ExpectQuery("FROM ocr_import_jobs").WithArgs(id).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestImportJobRepo_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewImportJobRepo(db)
	job := &domain.ImportJob{ID: uuid.New(), Status: domain.JobStatusDone, Progress: 100, FileMime: "application/pdf"}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ocr_import_jobs SET status = $1, progress = $2, file_mime = $3, updated_at = $4 WHERE id = $5")).
		WithArgs("done", 100, "application/pdf", sqlmock.AnyArg(), job.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), job))

	mock.ExpectExec("UPDATE ocr_import_jobs").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), job), domain.ErrJobNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportItemRepo_CreateBatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewImportItemRepo(db)
	jobID := uuid.New()

	items := []domain.ImportItem{
		{JobID: jobID, RawLine: "Chianti | 28 | 6", NameGuess: "Chianti", PriceGuess: "28", Confidence: 0.85},
		{JobID: jobID, RawLine: "Barolo 65", NameGuess: "Barolo", PriceGuess: "65", Confidence: 0.85},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ocr_import_items (id, job_id, raw_line, name_guess, price_guess, grapes_guess, confidence, created_at)")).
		WithArgs(
			sqlmock.AnyArg(), jobID, "Chianti | 28 | 6", "Chianti", "28", "", 0.85, sqlmock.AnyArg(),
			sqlmock.AnyArg(), jobID, "Barolo 65", "Barolo", "65", "", 0.85, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.CreateBatch(context.Background(), items))
	assert.NotEqual(t, uuid.Nil, items[0].ID)
	assert.True(t, items[1].CreatedAt.After(items[0].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportItemRepo_CreateBatchEmpty(t *testing.T) {
	db, mock := newMockDB(t)

	require.NoError(t, postgres.NewImportItemRepo(db).CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportItemRepo_ListByJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := postgres.NewImportItemRepo(db)
	jobID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM ocr_import_items WHERE job_id = $1 ORDER BY created_at, id")).
		WithArgs(jobID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_id", "raw_line", "name_guess", "price_guess", "grapes_guess", "confidence", "created_at"}).
			AddRow(uuid.NewString(), jobID.String(), "Barolo 65", "Barolo", "65", "Nebbiolo", 0.85, now))

	items, err := repo.ListByJob(context.Background(), jobID)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Nebbiolo", items[0].GrapesGuess)
	assert.NoError(t, mock.ExpectationsWereMet())
}
