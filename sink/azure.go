package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/rs/zerolog"

	"github.com/s0up4200/gopdfctl/config"
)

type azure struct {
	client    *azblob.Client
	container string
	logger    zerolog.Logger

	once    sync.Once
	initErr error
}

// NewAzure creates a sink backed by an Azure Blob Storage container.
// The container is created on first use if it does not exist yet.
func NewAzure(cfg config.AzureConfig, logger zerolog.Logger) (Sink, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("output.azure.connection_string is required")
	}
	if cfg.Container == "" {
		return nil, fmt.Errorf("output.azure.container is required")
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.Container,
		logger:    logger.With().Str("sink", "azure").Logger(),
	}, nil
}

func (a *azure) ensureContainer(ctx context.Context) error {
	a.once.Do(func() {
		_, err := a.client.CreateContainer(ctx, a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.initErr = fmt.Errorf("create container %s: %w", a.container, err)
			return
		}
		a.logger.Debug().Str("container", a.container).Msg("Storage container ready")
	})
	return a.initErr
}

func (a *azure) Put(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if err := a.ensureContainer(ctx); err != nil {
		return "", err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, data, opts); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", key, err)
	}

	location := fmt.Sprintf("azure://%s/%s", a.container, key)
	a.logger.Debug().Str("location", location).Msg("Document uploaded")
	return location, nil
}

func (a *azure) Close() error { return nil }
