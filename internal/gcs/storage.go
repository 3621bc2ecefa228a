package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

// uploadTimeout bounds a single object upload.
const uploadTimeout = 2 * time.Minute

// GCSStorageService is the concrete implementation of StorageService
// that interacts with Google Cloud Storage. It assumes Application Default
// Credentials are configured.
type GCSStorageService struct {
	client *storage.Client
}

// NewGCSStorageService creates a storage client. Call Close when done.
func NewGCSStorageService(ctx context.Context) (*GCSStorageService, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStorageService{client: client}, nil
}

// Close releases the underlying client.
func (s *GCSStorageService) Close() error {
	return s.client.Close()
}

// UploadFile uploads a local file to a GCS bucket under the given object name.
func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	_, err = s.Upload(ctx, bucketName, objectName, "", f)
	return err
}

// Upload streams r into bucketName/objectName.
func (s *GCSStorageService) Upload(ctx context.Context, bucketName, objectName, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy to GCS writer: %w", err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}
	return BuildGCSURI(bucketName, objectName), nil
}

// FetchFromGCS downloads the file bytes from the given GCS URI.
func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseGCSURI(gcsURI)
	if err != nil {
		return nil, err
	}

	rc, err := s.client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("fetchFromGCS: reading bytes: %w", err)
	}
	return data, nil
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
func (s *GCSStorageService) ExtractFilenameFromGCSURI(uri string) string {
	return ExtractFilenameFromGCSURI(uri)
}

// Ensure GCSStorageService implements StorageService.
var _ StorageService = (*GCSStorageService)(nil)
