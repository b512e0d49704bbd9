package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// CoverStorage stores course cover images under
// course_covers/{courseID}/{timestamp}_{filename}.
type CoverStorage struct {
	storage *MinioStorage
}

func NewCoverStorage(storage *MinioStorage) *CoverStorage {
	return &CoverStorage{storage: storage}
}

func (s *CoverStorage) UploadCover(
	ctx context.Context,
	courseID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, publicURL string, err error) {
	objectKey = fmt.Sprintf("course_covers/%s/%d_%s", courseID.String(), time.Now().UnixMilli(), filepath.Base(filename))

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	_, err = s.storage.client.PutObject(
		ctx,
		s.storage.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: contentType, CacheControl: "max-age=3600"},
	)
	if err != nil {
		return "", "", err
	}
	return objectKey, s.storage.PublicURL(objectKey), nil
}

func (s *CoverStorage) DeleteCover(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.storage.bucket, objectKey, minio.RemoveObjectOptions{})
}
