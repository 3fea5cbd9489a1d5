package port

import "context"

// DocumentAnnotationRequest describes an asynchronous multi-page OCR job.
type DocumentAnnotationRequest struct {
	SourceURI      string // gs://bucket/object
	DestinationURI string // gs://bucket/prefix/
	MimeType       string
	BatchSize      int64
}

// OperationStatus is a snapshot of a long-running OCR operation.
type OperationStatus struct {
	Name  string
	Done  bool
	Error string
}

// VisionAnnotator abstracts the cloud OCR backend.
type VisionAnnotator interface {
	// AnnotateImage runs full-document text detection on an image and returns
	// the detected text, or "" when nothing was detected.
	AnnotateImage(ctx context.Context, content []byte) (string, error)
	StartDocumentAnnotation(ctx context.Context, req DocumentAnnotationRequest) (string, error)
	GetOperation(ctx context.Context, name string) (*OperationStatus, error)
}

// TextAcquirer turns an uploaded file into OCR text.
type TextAcquirer interface {
	Acquire(ctx context.Context, key string, data []byte, mime string) (string, error)
}
