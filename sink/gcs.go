package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"

	"github.com/s0up4200/gopdfctl/config"
)

type gcs struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
	logger zerolog.Logger
}

// NewGCS creates a sink backed by a Google Cloud Storage bucket using
// application default credentials. Objects are never overwritten.
func NewGCS(ctx context.Context, cfg config.GCSConfig, logger zerolog.Logger) (Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("output.gcs.bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &gcs{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		name:   cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger.With().Str("sink", "gcs").Logger(),
	}, nil
}

func (g *gcs) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	object := joinPrefix(g.prefix, key)
	writer := g.bucket.Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, data); err != nil {
		_ = writer.Close()
		return "", g.writeError(object, err)
	}

	// the precondition is usually only reported when the upload is finalized
	if err := writer.Close(); err != nil {
		return "", g.writeError(object, err)
	}

	location := fmt.Sprintf("gs://%s/%s", g.name, object)
	g.logger.Debug().Str("location", location).Msg("Document uploaded")
	return location, nil
}

func (g *gcs) writeError(object string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%w: gs://%s/%s", ErrExists, g.name, object)
	}
	return fmt.Errorf("write object %s: %w", object, err)
}

func (g *gcs) Close() error {
	return g.client.Close()
}
