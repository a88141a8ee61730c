package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Storage хранит скриншоты в бакете AWS S3.
type S3Storage struct {
	client *s3.S3
	bucket string
	region string
}

// NewS3Storage создаёт хранилище поверх S3.
func NewS3Storage(region, bucket, accessKey, secretKey string) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось создать сессию S3: %w", err)
	}

	return &S3Storage{
		client: s3.New(sess),
		bucket: bucket,
		region: region,
	}, nil
}

// Upload загружает объект и возвращает его публичный URL.
func (s *S3Storage) Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error) {
	// PutObject требует io.ReadSeeker, поэтому буферизуем содержимое.
	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, r); err != nil {
		return "", fmt.Errorf("storage: не удалось прочитать файл: %w", err)
	}

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(buffer.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: не удалось загрузить объект в S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, path)
	return url, nil
}

// Delete удаляет объект из бакета.
func (s *S3Storage) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("storage: не удалось удалить объект из S3: %w", err)
	}
	return nil
}
