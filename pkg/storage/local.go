package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Local stores uploaded files on the local filesystem and serves them from a
// static base URL. Suitable for single-node deployments and tests.
type Local struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewLocal constructs a disk-backed store rooted at dir.
func NewLocal(dir, baseURL string, logger zerolog.Logger) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory must be provided")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Upload writes the stream to a uniquely named file and returns its URL.
// The stored name is prefixed with a random id so resubmissions never clobber
// files still referenced by a prior response.
func (l *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	stored := uuid.NewString() + "-" + sanitizeFilename(name)
	path := filepath.Join(l.dir, stored)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	l.logger.Debug().Str("file", stored).Msg("file stored locally")

	return l.baseURL + "/" + stored, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, base)

	if base == "" || base == "." {
		base = "upload"
	}

	return base
}
