// Package vision adapts the Cloud Vision REST API to port.VisionAnnotator.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/vision/v1"

	"winelist/internal/config"
	"winelist/internal/domain"
	"winelist/internal/port"
)

const featureDocumentText = "DOCUMENT_TEXT_DETECTION"

// Annotator implements port.VisionAnnotator.
type Annotator struct {
	svc *vision.Service
}

// ClientOptions builds the Google API client options shared by the Vision
// and Cloud Storage adapters.
func ClientOptions(cfg *config.VisionConfig, endpoint string) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}

// NewAnnotator creates a Vision client.
func NewAnnotator(ctx context.Context, opts ...option.ClientOption) (*Annotator, error) {
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}
	return &Annotator{svc: svc}, nil
}

func (a *Annotator) AnnotateImage(ctx context.Context, content []byte) (string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(content)},
			Features: []*vision.Feature{{Type: featureDocumentText}},
		}},
	}
	resp, err := a.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", upstream(err)
	}
	if len(resp.Responses) == 0 {
		return "", nil
	}
	first := resp.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return "", &domain.UpstreamError{Service: "vision", StatusCode: 500, Body: first.Error.Message}
	}
	if first.FullTextAnnotation == nil {
		return "", nil
	}
	return first.FullTextAnnotation.Text, nil
}

func (a *Annotator) StartDocumentAnnotation(ctx context.Context, in port.DocumentAnnotationRequest) (string, error) {
	req := &vision.AsyncBatchAnnotateFilesRequest{
		Requests: []*vision.AsyncAnnotateFileRequest{{
			InputConfig: &vision.InputConfig{
				GcsSource: &vision.GcsSource{Uri: in.SourceURI},
				MimeType:  in.MimeType,
			},
			Features: []*vision.Feature{{Type: featureDocumentText}},
			OutputConfig: &vision.OutputConfig{
				GcsDestination: &vision.GcsDestination{Uri: in.DestinationURI},
				BatchSize:      in.BatchSize,
			},
		}},
	}
	op, err := a.svc.Files.AsyncBatchAnnotate(req).Context(ctx).Do()
	if err != nil {
		return "", upstream(err)
	}
	return op.Name, nil
}

func (a *Annotator) GetOperation(ctx context.Context, name string) (*port.OperationStatus, error) {
	op, err := a.svc.Operations.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, upstream(err)
	}
	status := &port.OperationStatus{Name: op.Name, Done: op.Done}
	if op.Error != nil {
		status.Error = op.Error.Message
		if status.Error == "" {
			status.Error = fmt.Sprintf("operation failed with code %d", op.Error.Code)
		}
	}
	return status, nil
}

func upstream(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		body := gErr.Body
		if body == "" {
			body = gErr.Message
		}
		return &domain.UpstreamError{Service: "vision", StatusCode: gErr.Code, Body: body}
	}
	return fmt.Errorf("vision request: %w", err)
}
