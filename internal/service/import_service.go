package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"winelist/internal/domain"
	"winelist/internal/export"
	"winelist/internal/extractor"
	"winelist/internal/port"
	"winelist/internal/ruleparser"
	"winelist/internal/textnorm"
)

// Progress checkpoints recorded on the job.
const (
	ProgressStarted    = 0
	ProgressDownloaded = 20
	ProgressOCRDone    = 50
	ProgressExtracted  = 80
	ProgressDone       = 100
)

const (
	defaultPersistLimit  = 500
	defaultPreviewChars  = 2000
	defaultPresignExpiry = 3600
)

// ImportInput is the DTO for an OCR import request.
type ImportInput struct {
	UserID       uuid.UUID
	RestaurantID uuid.UUID
	Bucket       string
	Path         string
}

// ImportResult is returned by a completed import.
type ImportResult struct {
	JobID         uuid.UUID         `json:"job_id"`
	Items         []domain.WineItem `json:"items"`
	RawOCRPreview string            `json:"raw_ocr_preview"`
}

// JobDetail is a job with its persisted rows.
type JobDetail struct {
	Job   *domain.ImportJob   `json:"job"`
	Items []domain.ImportItem `json:"items"`
}

// ExportResult points to a generated export file.
type ExportResult struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	Format    string `json:"format"`
	ExpiresIn int64  `json:"expires_in"`
}

// ImportOptions holds the import budgets and export settings.
type ImportOptions struct {
	PersistLimit  int
	PreviewChars  int
	ExportBucket  string
	PresignExpiry int64
}

// ImportService runs OCR wine-list imports and serves their results.
type ImportService interface {
	Import(ctx context.Context, input ImportInput) (*ImportResult, error)
	GetJob(ctx context.Context, userID, jobID uuid.UUID) (*JobDetail, error)
	ExportJob(ctx context.Context, userID, jobID uuid.UUID, format export.Format) (*ExportResult, error)
}

type importService struct {
	restaurants port.RestaurantRepository
	jobs        port.ImportJobRepository
	items       port.ImportItemRepository
	storage     port.ObjectStorage
	ocr         port.TextAcquirer
	rules       *ruleparser.Parser
	llm         *extractor.Pipeline
	opts        ImportOptions
}

// NewImportService creates an ImportService. A nil or disabled pipeline
// leaves the rule parser as the only extraction strategy.
func NewImportService(
	restaurants port.RestaurantRepository,
	jobs port.ImportJobRepository,
	items port.ImportItemRepository,
	storage port.ObjectStorage,
	ocr port.TextAcquirer,
	rules *ruleparser.Parser,
	llm *extractor.Pipeline,
	opts ImportOptions,
) ImportService {
	if opts.PersistLimit <= 0 {
		opts.PersistLimit = defaultPersistLimit
	}
	if opts.PreviewChars <= 0 {
		opts.PreviewChars = defaultPreviewChars
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = defaultPresignExpiry
	}
	return &importService{
		restaurants: restaurants,
		jobs:        jobs,
		items:       items,
		storage:     storage,
		ocr:         ocr,
		rules:       rules,
		llm:         llm,
		opts:        opts,
	}
}

func (s *importService) Import(ctx context.Context, input ImportInput) (*ImportResult, error) {
	if input.RestaurantID == uuid.Nil || strings.TrimSpace(input.Bucket) == "" || strings.TrimSpace(input.Path) == "" {
		return nil, domain.ErrInvalidRequest
	}

	if _, err := s.authorize(ctx, input.UserID, input.RestaurantID, true); err != nil {
		return nil, err
	}

	job := &domain.ImportJob{
		RistoranteID: input.RestaurantID,
		Status:       domain.JobStatusProcessing,
		FileBucket:   input.Bucket,
		FilePath:     input.Path,
		Progress:     ProgressStarted,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating import job: %w", err)
	}
	log.Printf("service.ImportService: job %s started for restaurant %s (%s/%s)", job.ID, job.RistoranteID, job.FileBucket, job.FilePath)

	data, err := s.storage.Download(ctx, input.Bucket, input.Path)
	if err != nil {
		return nil, fmt.Errorf("downloading source file: %w", err)
	}
	job.FileMime = DetectMIME(data, input.Path)
	s.setProgress(ctx, job, ProgressDownloaded)

	text, err := s.ocr.Acquire(ctx, job.ID.String(), data, job.FileMime)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	s.setProgress(ctx, job, ProgressOCRDone)

	items := Extract(ctx, s.rules, s.llm, text)
	s.setProgress(ctx, job, ProgressExtracted)

	if err := s.persist(ctx, job.ID, items); err != nil {
		return nil, err
	}

	job.Status = domain.JobStatusDone
	job.Progress = ProgressDone
	if err := s.jobs.UpdateStatus(ctx, job); err != nil {
		return nil, fmt.Errorf("completing import job: %w", err)
	}
	log.Printf("service.ImportService: job %s done, %d items (%s)", job.ID, len(items), job.FileMime)

	if items == nil {
		items = []domain.WineItem{}
	}
	return &ImportResult{
		JobID:         job.ID,
		Items:         items,
		RawOCRPreview: textnorm.Truncate(text, s.opts.PreviewChars),
	}, nil
}

// Extract runs the rule parser always and the model pipeline when enabled,
// preferring the pipeline's items when it returned any.
func Extract(ctx context.Context, rules *ruleparser.Parser, llm *extractor.Pipeline, text string) []domain.WineItem {
	lines := textnorm.NormalizeLines(text)
	if len(lines) == 0 {
		return nil
	}

	ruleItems := rules.Parse(lines)
	if !llm.Enabled() {
		return ruleItems
	}

	llmItems := llm.Extract(ctx, textnorm.Number(lines))
	if len(llmItems) > 0 {
		log.Printf("service.Extract: using %d model items (rule parser found %d)", len(llmItems), len(ruleItems))
		return llmItems
	}
	return ruleItems
}

func (s *importService) persist(ctx context.Context, jobID uuid.UUID, items []domain.WineItem) error {
	n := len(items)
	if n > s.opts.PersistLimit {
		log.Printf("service.ImportService: job %s has %d items, persisting first %d", jobID, n, s.opts.PersistLimit)
		n = s.opts.PersistLimit
	}
	if n == 0 {
		return nil
	}

	rows := make([]domain.ImportItem, n)
	for i := 0; i < n; i++ {
		it := &items[i]
		rows[i] = domain.ImportItem{
			JobID:       jobID,
			RawLine:     it.Trace(),
			NameGuess:   it.Nome,
			PriceGuess:  it.PriceGuess(),
			GrapesGuess: it.Uvaggio,
			Confidence:  it.Confidence,
		}
	}
	if err := s.items.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("persisting import items: %w", err)
	}
	return nil
}

// setProgress is best effort; a failed write is logged and the import goes on.
func (s *importService) setProgress(ctx context.Context, job *domain.ImportJob, progress int) {
	job.Progress = progress
	if err := s.jobs.UpdateStatus(ctx, job); err != nil {
		log.Printf("service.ImportService: job %s progress %d not recorded: %v", job.ID, progress, err)
	}
}

func (s *importService) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*JobDetail, error) {
	job, err := s.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("listing import items: %w", err)
	}
	return &JobDetail{Job: job, Items: items}, nil
}

func (s *importService) ExportJob(ctx context.Context, userID, jobID uuid.UUID, format export.Format) (*ExportResult, error) {
	job, err := s.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusDone {
		return nil, fmt.Errorf("%w: job is %s", domain.ErrInvalidRequest, job.Status)
	}
	if s.opts.ExportBucket == "" {
		return nil, errors.New("export bucket not configured")
	}

	items, err := s.items.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("listing import items: %w", err)
	}
	data, err := export.Render(format, items)
	if err != nil {
		return nil, fmt.Errorf("rendering export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.%s", job.RistoranteID, job.ID, format)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.opts.ExportBucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: format.ContentType(),
	}); err != nil {
		return nil, fmt.Errorf("uploading export: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.opts.ExportBucket, key, s.opts.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning export: %w", err)
	}
	log.Printf("service.ImportService: job %s exported to %s (%d rows)", job.ID, key, len(items))
	return &ExportResult{URL: url, Key: key, Format: string(format), ExpiresIn: s.opts.PresignExpiry}, nil
}

func (s *importService) ownedJob(ctx context.Context, userID, jobID uuid.UUID) (*domain.ImportJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, userID, job.RistoranteID, false); err != nil {
		if errors.Is(err, domain.ErrRestaurantNotFound) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// authorize checks ownership and, for new imports, the subscription plan.
func (s *importService) authorize(ctx context.Context, userID, restaurantID uuid.UUID, requirePlan bool) (*domain.Restaurant, error) {
	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if rest.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	if requirePlan && !rest.CanImportOCR() {
		return nil, domain.ErrSubscriptionRequired
	}
	return rest, nil
}

// DetectMIME sniffs the content and falls back to the object extension when
// the bytes are not conclusive.
func DetectMIME(data []byte, objectPath string) string {
	detected := mimetype.Detect(data)
	m := detected.String()
	if detected.Is("application/octet-stream") || strings.HasPrefix(m, "text/") {
		if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(objectPath))); byExt != "" {
			m = byExt
		}
	}
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}
