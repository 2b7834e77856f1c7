package service

import (
	"context"
	"io"
)

// FileStorage abstracts upload destinations for content and submission files.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}
