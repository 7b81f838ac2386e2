package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"fraudlens/pkg/logger"
)

// ErrTooLarge is returned when an upload exceeds the configured size limit
var ErrTooLarge = errors.New("upload exceeds size limit")

// Stager writes uploads to a private temporary file for the duration of
// one callback and always removes the file afterwards.
type Stager struct {
	dir      string
	maxBytes int64
	logger   *logger.Logger
}

// NewStager creates a stager rooted at dir. A maxBytes of zero or less
// disables the size limit.
func NewStager(dir string, maxBytes int64, log *logger.Logger) *Stager {
	return &Stager{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   log.WithComponent("upload-stager"),
	}
}

// Stage copies src into a new file under the staging directory and calls
// fn with the file positioned at its start. The file is closed and
// deleted when Stage returns, whether fn succeeds, fails, or panics.
func (s *Stager) Stage(src io.Reader, fn func(f *os.File) error) (err error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(s.dir, uuid.NewString()+".upload")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	defer s.release(f, path)

	reader := src
	if s.maxBytes > 0 {
		reader = io.LimitReader(src, s.maxBytes+1)
	}

	n, err := io.Copy(f, reader)
	if err != nil {
		return fmt.Errorf("failed to stage upload: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return ErrTooLarge
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind staging file: %w", err)
	}

	return fn(f)
}

func (s *Stager) release(f *os.File, path string) {
	if err := f.Close(); err != nil {
		s.logger.Debug().Err(err).Str("path", path).Msg("failed to close staging file")
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove staging file")
	}
}
