// Package minioclient implements storage.Store on top of the MinIO SDK, for
// S3-compatible services that are better served by it than by the AWS SDK.
package minioclient

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	appConfig "blobtool/config"
	"blobtool/internal/models"
	"blobtool/internal/storage"
)

type Client struct {
	client *minio.Client
}

func New(cfg *appConfig.Config) (*Client, error) {
	endpoint, secure, err := parseEndpoint(cfg.ApiURL)
	if err != nil {
		return nil, err
	}

	lookup := minio.BucketLookupAuto
	if cfg.UsePathStyle {
		lookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
		MaxRetries:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	slog.Debug("minio store ready", "endpoint", endpoint, "secure", secure)

	return &Client{client: client}, nil
}

// parseEndpoint accepts either a URL or a bare host:port. A bare host is
// treated as https.
func parseEndpoint(raw string) (string, bool, error) {
	if raw == "" {
		return "", false, fmt.Errorf("minio endpoint is empty")
	}
	if !strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/"), true, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("invalid minio endpoint %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http":
		return u.Host, false, nil
	case "https":
		return u.Host, true, nil
	default:
		return "", false, fmt.Errorf("invalid minio endpoint %q: unsupported scheme %q", raw, u.Scheme)
	}
}

func (c *Client) List(ctx context.Context, bucket, directory string, recursive bool) iter.Seq2[models.DirectoryEntry, error] {
	return func(yield func(models.DirectoryEntry, error) bool) {
		// Cancelling stops the SDK's listing goroutine when iteration ends early.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		prefix := storage.Prefix(directory)
		objects := c.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: recursive,
		})

		for obj := range objects {
			if obj.Err != nil {
				yield(models.DirectoryEntry{}, wrapError("list", bucket, "", obj.Err))
				return
			}
			if obj.Key == prefix {
				continue
			}
			if !yield(toEntry(obj), nil) {
				return
			}
		}
	}
}

func toEntry(obj minio.ObjectInfo) models.DirectoryEntry {
	isDir := strings.HasSuffix(obj.Key, storage.Separator)
	return models.DirectoryEntry{
		Name:          strings.TrimSuffix(obj.Key, storage.Separator),
		LastModified:  obj.LastModified,
		ContentLength: obj.Size,
		IsDirectory:   isDir,
	}
}

func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapError("open", bucket, key, err)
	}

	// GetObject is lazy; Stat issues the request so missing objects fail here
	// rather than on the first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, wrapError("open", bucket, key, err)
	}

	return obj, nil
}

func wrapError(op, bucket, key string, err error) error {
	kind := storage.KindForCode(minio.ToErrorResponse(err).Code)
	return storage.NewError(op, bucket, key, kind, err)
}
