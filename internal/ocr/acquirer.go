// Package ocr turns an uploaded wine list into raw text. Images are annotated
// synchronously; PDFs go through the asynchronous file annotation flow with
// output shards staged in a bucket.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/api/vision/v1"

	"winelist/internal/config"
	"winelist/internal/domain"
	"winelist/internal/port"
	"winelist/internal/textnorm"
)

const (
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxPollAttempts = 60
	DefaultMaxChars        = 120000
	DefaultBatchSize       = 20
)

// Options configures staging locations and the poll loop.
type Options struct {
	Bucket          string
	InputPrefix     string
	OutputPrefix    string
	PollInterval    time.Duration
	MaxPollAttempts int
	MaxChars        int
	BatchSize       int64
}

// OptionsFromConfig maps VisionConfig to Options, keeping defaults for
// unset values.
func OptionsFromConfig(cfg *config.VisionConfig) Options {
	opts := Options{
		Bucket:          cfg.Bucket,
		InputPrefix:     strings.Trim(cfg.InputPrefix, "/"),
		OutputPrefix:    strings.Trim(cfg.OutputPrefix, "/"),
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
		MaxChars:        cfg.MaxOCRChars,
		BatchSize:       cfg.BatchSize,
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxPollAttempts <= 0 {
		opts.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return opts
}

// Acquirer runs OCR over uploaded files.
type Acquirer struct {
	annotator port.VisionAnnotator
	staging   port.StagingStore
	opts      Options
}

// NewAcquirer creates an Acquirer.
func NewAcquirer(annotator port.VisionAnnotator, staging port.StagingStore, opts Options) *Acquirer {
	return &Acquirer{annotator: annotator, staging: staging, opts: opts}
}

// Acquire returns the OCR text of data. key names the staged objects of a
// document so concurrent imports never share an output prefix. An image
// without detected text yields "".
func (a *Acquirer) Acquire(ctx context.Context, key string, data []byte, mime string) (string, error) {
	kind, err := domain.ClassifyMIME(mime)
	if err != nil {
		return "", err
	}

	if kind == domain.FileKindImage {
		text, err := a.annotator.AnnotateImage(ctx, data)
		if err != nil {
			return "", fmt.Errorf("ocr.Acquire: annotate image: %w", err)
		}
		return text, nil
	}
	return a.acquireDocument(ctx, key, data, mime)
}

func (a *Acquirer) acquireDocument(ctx context.Context, key string, data []byte, mime string) (string, error) {
	inputObject := a.opts.InputPrefix + "/" + key + ".pdf"
	outputPrefix := a.opts.OutputPrefix + "/" + key + "/"

	if err := a.staging.Put(ctx, a.opts.Bucket, inputObject, data, mime); err != nil {
		return "", fmt.Errorf("ocr.Acquire: stage document: %w", err)
	}

	opName, err := a.annotator.StartDocumentAnnotation(ctx, port.DocumentAnnotationRequest{
		SourceURI:      "gs://" + a.opts.Bucket + "/" + inputObject,
		DestinationURI: "gs://" + a.opts.Bucket + "/" + outputPrefix,
		MimeType:       mime,
		BatchSize:      a.opts.BatchSize,
	})
	if err != nil {
		return "", fmt.Errorf("ocr.Acquire: start annotation: %w", err)
	}
	log.Printf("ocr.Acquirer: started document annotation %s for %s", opName, inputObject)

	if err := a.waitForOperation(ctx, opName); err != nil {
		return "", err
	}

	objects, err := a.staging.List(ctx, a.opts.Bucket, outputPrefix)
	if err != nil {
		return "", fmt.Errorf("ocr.Acquire: list output: %w", err)
	}
	return a.collectShards(ctx, objects)
}

// waitForOperation polls every PollInterval, at most MaxPollAttempts times.
func (a *Acquirer) waitForOperation(ctx context.Context, name string) error {
	for attempt := 1; attempt <= a.opts.MaxPollAttempts; attempt++ {
		timer := time.NewTimer(a.opts.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		op, err := a.annotator.GetOperation(ctx, name)
		if err != nil {
			return fmt.Errorf("ocr.Acquire: poll operation: %w", err)
		}
		if !op.Done {
			continue
		}
		if op.Error != "" {
			return &domain.UpstreamError{Service: "vision", StatusCode: 500, Body: op.Error}
		}
		return nil
	}
	return fmt.Errorf("ocr.Acquire: %w after %d attempts", domain.ErrOCRTimeout, a.opts.MaxPollAttempts)
}

func (a *Acquirer) collectShards(ctx context.Context, objects []string) (string, error) {
	var (
		b     strings.Builder
		count int
	)
	for _, obj := range objects {
		if !strings.HasSuffix(obj, ".json") {
			continue
		}
		raw, err := a.staging.Get(ctx, a.opts.Bucket, obj)
		if err != nil {
			return "", fmt.Errorf("ocr.Acquire: download shard %s: %w", obj, err)
		}
		var shard vision.AnnotateFileResponse
		if err := json.Unmarshal(raw, &shard); err != nil {
			return "", fmt.Errorf("ocr.Acquire: decode shard %s: %w", obj, err)
		}
		for _, resp := range shard.Responses {
			if resp == nil || resp.FullTextAnnotation == nil {
				continue
			}
			text := resp.FullTextAnnotation.Text
			n := utf8.RuneCountInString(text)
			if count+n >= a.opts.MaxChars {
				b.WriteString(textnorm.Truncate(text, a.opts.MaxChars-count))
				return b.String(), nil
			}
			b.WriteString(text)
			count += n
		}
	}
	return b.String(), nil
}
