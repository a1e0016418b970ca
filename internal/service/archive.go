package service

import (
	"context"
	"fmt"

	gcsstorage "cloud.google.com/go/storage"
)

// DocumentArchive keeps the original uploaded documents after
// extraction, so the paper trail behind a filed property survives past
// the upload request.
type DocumentArchive interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// GCSArchive stores document originals in a Cloud Storage bucket.
type GCSArchive struct {
	bucket *gcsstorage.BucketHandle
}

func NewGCSArchive(bucket *gcsstorage.BucketHandle) *GCSArchive {
	return &GCSArchive{bucket: bucket}
}

func (a *GCSArchive) Save(ctx context.Context, objectName string, data []byte) error {
	w := a.bucket.Object(objectName).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", objectName, err)
	}
	return nil
}
