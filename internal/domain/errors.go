package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrRestaurantNotFound   = errors.New("restaurant not found")
	ErrJobNotFound          = errors.New("import job not found")
	ErrSubscriptionRequired = errors.New("ocr import requires an active pro subscription")
	ErrOCRTimeout           = errors.New("ocr operation timed out")
)

// UpstreamError is returned when a storage, OCR or identity dependency
// answers with a non-2xx status. Body carries the raw response body.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Service, e.StatusCode, e.Body)
}
