package storage

import (
	"context"
	"io"
)

// BlobStorage описывает внешнее файловое хранилище скриншотов.
// Upload сохраняет содержимое по заданному пути и возвращает публичный URL.
type BlobStorage interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}
