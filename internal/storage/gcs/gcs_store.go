// Package gcs implements port.StagingStore on the Cloud Storage JSON API.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/storage/v1"

	"winelist/internal/domain"
)

// Store is the staging bucket used by document OCR.
type Store struct {
	svc *storage.Service
}

// NewStore creates a Cloud Storage client.
func NewStore(ctx context.Context, opts ...option.ClientOption) (*Store, error) {
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &Store{svc: svc}, nil
}

func (s *Store) Put(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	call := s.svc.Objects.Insert(bucket, &storage.Object{Name: object, ContentType: contentType}).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return upstream(err)
	}
	return nil
}

// List returns object names under prefix in listing order.
func (s *Store) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var names []string
	err := s.svc.Objects.List(bucket).Prefix(prefix).Fields("items/name", "nextPageToken").
		Pages(ctx, func(objs *storage.Objects) error {
			for _, o := range objs.Items {
				names = append(names, o.Name)
			}
			return nil
		})
	if err != nil {
		return nil, upstream(err)
	}
	return names, nil
}

func (s *Store) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	resp, err := s.svc.Objects.Get(bucket, object).Context(ctx).Download()
	if err != nil {
		return nil, upstream(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", object, err)
	}
	return data, nil
}

func upstream(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		body := gErr.Body
		if body == "" {
			body = gErr.Message
		}
		return &domain.UpstreamError{Service: "gcs", StatusCode: gErr.Code, Body: body}
	}
	return fmt.Errorf("gcs request: %w", err)
}
