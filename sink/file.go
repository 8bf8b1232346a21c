package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type file struct {
	dir    string
	logger zerolog.Logger
}

// NewFile creates a sink that writes below dir, replacing existing files
func NewFile(dir string, logger zerolog.Logger) Sink {
	if dir == "" {
		dir = "."
	}
	return &file{
		dir:    dir,
		logger: logger.With().Str("sink", "file").Logger(),
	}
}

func (f *file) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	target := key
	if !filepath.IsAbs(key) {
		target = filepath.Join(f.dir, key)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create output file %s: %w", target, err)
	}

	n, err := io.Copy(out, data)
	if err != nil {
		out.Close()
		return "", fmt.Errorf("write output file %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close output file %s: %w", target, err)
	}

	f.logger.Debug().
		Str("path", target).
		Int64("bytes", n).
		Msg("Document written")

	return target, nil
}

func (f *file) Close() error { return nil }
