package storage

import (
	"context"
	"io"
	"time"
)

// EvidenceStore is the externally supplied picture storage. Evidence pictures
// are uploaded by the client straight to a presigned URL; the booking service
// only issues URLs and checks that an upload landed.
type EvidenceStore interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)
}

// LocalFiles is implemented by stores that the evidence HTTP handler can serve from disk.
type LocalFiles interface {
	SaveFile(key string, reader io.Reader) error
	ReadFile(key string) (io.ReadCloser, error)
}
