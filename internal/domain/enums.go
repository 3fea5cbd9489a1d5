package domain

import "strings"

// JobStatus represents the lifecycle of an OCR import job.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

// SubscriptionPlan values stored on the restaurant record.
const (
	PlanPro = "pro"

	SubscriptionStatusActive = "active"
)

// FileKind is the acquisition path chosen for a source file.
type FileKind string

const (
	FileKindImage    FileKind = "image"
	FileKindDocument FileKind = "document"
)

// ClassifyMIME maps a MIME type to the OCR acquisition path.
func ClassifyMIME(mime string) (FileKind, error) {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch {
	case mime == "application/pdf":
		return FileKindDocument, nil
	case strings.HasPrefix(mime, "image/"):
		return FileKindImage, nil
	default:
		return "", ErrUnsupportedFileType
	}
}
