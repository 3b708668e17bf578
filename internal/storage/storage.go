// Package storage stores record images in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"io"
)

// MaxImageSize is the largest image accepted for upload.
const MaxImageSize = 5 << 20

var (
	// ErrUnsupportedType is returned for uploads that are not images.
	ErrUnsupportedType = errors.New("only image uploads are supported")
	// ErrTooLarge is returned for uploads over MaxImageSize.
	ErrTooLarge = errors.New("image is too large")
)

//go:generate mockgen -source=storage.go -destination=../mocks/storage/mock_storage.go -package=mock_storage

// ImageStorage uploads record images and returns their public URL.
type ImageStorage interface {
	Upload(ctx context.Context, recordID, filename, contentType string, body io.Reader, size int64) (string, error)
}
