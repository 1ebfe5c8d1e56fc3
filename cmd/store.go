package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"blobtool/config"
	"blobtool/internal/download"
	"blobtool/internal/minioclient"
	"blobtool/internal/s3client"
	"blobtool/internal/storage"
)

// openStore builds the backend selected by c.Provider. Tests replace it.
var openStore = func(c *config.Config) (storage.Store, error) {
	slog.Debug("Opening store", "provider", c.Provider, "api_url", c.ApiURL, "region", c.Region)

	switch c.Provider {
	case config.ProviderMinio:
		client, err := minioclient.New(c)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := s3client.New(c)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// storeFor validates c and opens its store.
func storeFor(c *config.Config) (storage.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return openStore(c)
}

// operationContext derives the context for one remote operation. The
// --timeout flag, when given, overrides OPERATION_TIMEOUT; zero disables the
// deadline.
func operationContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := cfg.OperationTimeout
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		seconds, _ := cmd.Flags().GetInt("timeout")
		timeout = time.Duration(seconds) * time.Second
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

func newDownloader(store storage.Store) *download.Downloader {
	return download.New(store).WithProgress(func(written int64) {
		slog.Debug("Download progress", "bytes", written)
	})
}
