// Package sink persists converted documents to local disk, Azure Blob Storage
// or Google Cloud Storage.
package sink

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/s0up4200/gopdfctl/config"
)

// ContentTypePDF is the content type stored alongside converted documents
const ContentTypePDF = "application/pdf"

// Sink writes a document under a key and reports where it ended up
type Sink interface {
	// Put streams data to key and returns a human readable location.
	Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	// Close releases any client resources held by the sink.
	Close() error
}

// New creates the sink selected by cfg.Sink
func New(ctx context.Context, cfg config.OutputConfig, logger zerolog.Logger) (Sink, error) {
	switch cfg.Sink {
	case "", "file":
		return NewFile(cfg.Dir, logger), nil
	case "azure":
		return NewAzure(cfg.Azure, logger)
	case "gcs":
		return NewGCS(ctx, cfg.GCS, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSink, cfg.Sink)
	}
}

// Key returns name as an output key, generating a unique one when name is empty
func Key(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.NewString() + ".pdf"
	}
	return name
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

func joinPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
