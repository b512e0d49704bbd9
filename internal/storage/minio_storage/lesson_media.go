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

// LessonMediaStorage stores lesson videos under
// courses/{courseID}/modules/{moduleID}/lessons/{lessonID}/{timestamp}_{filename}.
type LessonMediaStorage struct {
	storage *MinioStorage
}

func NewLessonMediaStorage(storage *MinioStorage) *LessonMediaStorage {
	return &LessonMediaStorage{storage: storage}
}

func (s *LessonMediaStorage) UploadVideo(
	ctx context.Context,
	courseID, moduleID, lessonID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, publicURL string, err error) {
	objectKey = fmt.Sprintf("courses/%s/modules/%s/lessons/%s/%d_%s",
		courseID.String(), moduleID.String(), lessonID.String(),
		time.Now().UnixMilli(), filepath.Base(filename),
	)

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

func (s *LessonMediaStorage) DeleteVideo(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.storage.bucket, objectKey, minio.RemoveObjectOptions{})
}
