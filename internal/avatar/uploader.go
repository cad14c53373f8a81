// Package avatar stores person avatar images in a GCS bucket.
package avatar

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploader writes avatar images to a bucket and hands back their gs://
// URI. It assumes Application Default Credentials are configured.
type Uploader struct {
	bucket string
}

// NewUploader creates an uploader targeting the given bucket.
func NewUploader(bucket string) *Uploader {
	return &Uploader{bucket: bucket}
}

// Upload streams the image into the bucket under a per-person object
// name and returns the object's gs:// URI.
func (u *Uploader) Upload(ctx context.Context, personID, contentType string, r io.Reader) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	objectName := fmt.Sprintf("avatars/%s/%s", personID, uuid.New().String())
	w := client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy image to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", u.bucket, objectName), nil
}
