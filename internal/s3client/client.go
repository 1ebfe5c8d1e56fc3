package s3client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	appConfig "blobtool/config"
	"blobtool/internal/models"
	"blobtool/internal/storage"
)

const (
	defaultRegion = "us-east-1"
	maxPageKeys   = 1000
)

// API is the subset of the S3 client the store calls.
type API interface {
	s3.ListObjectsV2APIClient
	manager.HeadBucketAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Client struct {
	s3Client API
	config   *appConfig.Config
	regions  map[string]string
}

func New(cfg *appConfig.Config) (*Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = cfg.UsePathStyle
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	slog.Debug("s3 store ready", "endpoint", cfg.ApiURL, "region", region)

	return NewWithAPI(s3Client, cfg), nil
}

// NewWithAPI builds a Client over an existing API implementation.
func NewWithAPI(api API, cfg *appConfig.Config) *Client {
	return &Client{
		s3Client: api,
		config:   cfg,
		regions:  make(map[string]string),
	}
}

func (c *Client) List(ctx context.Context, bucket, directory string, recursive bool) iter.Seq2[models.DirectoryEntry, error] {
	return func(yield func(models.DirectoryEntry, error) bool) {
		regionOpt, err := c.bucketRegion(ctx, bucket)
		if err != nil {
			yield(models.DirectoryEntry{}, wrapError("list", bucket, "", err))
			return
		}

		prefix := storage.Prefix(directory)
		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(prefix),
			MaxKeys: aws.Int32(maxPageKeys),
		}
		if !recursive {
			input.Delimiter = aws.String(storage.Separator)
		}

		paginator := s3.NewListObjectsV2Paginator(c.s3Client, input)

		for page := 1; paginator.HasMorePages(); page++ {
			output, err := paginator.NextPage(ctx, regionOpt...)
			if err != nil {
				yield(models.DirectoryEntry{}, wrapError("list", bucket, "", err))
				return
			}
			slog.Debug("fetched listing page", "bucket", bucket, "prefix", prefix, "page", page,
				"objects", len(output.Contents), "prefixes", len(output.CommonPrefixes))

			for _, entry := range pageEntries(prefix, output.Contents, output.CommonPrefixes) {
				if !yield(entry, nil) {
					return
				}
			}
		}
	}
}

func (c *Client) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	regionOpt, err := c.bucketRegion(ctx, bucket)
	if err != nil {
		return nil, wrapError("open", bucket, key, err)
	}

	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, regionOpt...)
	if err != nil {
		return nil, wrapError("open", bucket, key, err)
	}

	return output.Body, nil
}

// bucketRegion resolves the bucket's region when neither a region nor a
// custom endpoint is configured, so listing works against any AWS region.
func (c *Client) bucketRegion(ctx context.Context, bucket string) ([]func(*s3.Options), error) {
	if c.config.Region != "" || c.config.ApiURL != "" {
		return nil, nil
	}

	region, ok := c.regions[bucket]
	if !ok {
		var err error
		region, err = manager.GetBucketRegion(ctx, c.s3Client, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve bucket region: %w", err)
		}
		c.regions[bucket] = region
		slog.Debug("resolved bucket region", "bucket", bucket, "region", region)
	}

	return []func(*s3.Options){func(o *s3.Options) { o.Region = region }}, nil
}

// pageEntries merges a page's objects and common prefixes into one
// lexicographically ordered slice. S3 returns each list sorted.
func pageEntries(prefix string, objects []types.Object, prefixes []types.CommonPrefix) []models.DirectoryEntry {
	entries := make([]models.DirectoryEntry, 0, len(objects)+len(prefixes))

	i, j := 0, 0
	for i < len(objects) || j < len(prefixes) {
		if j >= len(prefixes) || (i < len(objects) && aws.ToString(objects[i].Key) < aws.ToString(prefixes[j].Prefix)) {
			obj := objects[i]
			i++
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			entries = append(entries, models.DirectoryEntry{
				Name:          strings.TrimSuffix(key, storage.Separator),
				LastModified:  aws.ToTime(obj.LastModified),
				ContentLength: aws.ToInt64(obj.Size),
				IsDirectory:   strings.HasSuffix(key, storage.Separator),
			})
			continue
		}

		p := aws.ToString(prefixes[j].Prefix)
		j++
		entries = append(entries, models.DirectoryEntry{
			Name:        strings.TrimSuffix(p, storage.Separator),
			IsDirectory: true,
		})
	}

	return entries
}

func wrapError(op, bucket, key string, err error) error {
	var kind error
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		kind = storage.KindForCode(apiErr.ErrorCode())
	}
	if kind == nil && key == "" && isNotFound(err) {
		kind = storage.ErrContainerNotFound
	}
	return storage.NewError(op, bucket, key, kind, err)
}

func isNotFound(err error) bool {
	var nsb *types.NoSuchBucket
	var nf *types.NotFound
	var bnf manager.BucketNotFound
	return errors.As(err, &nsb) || errors.As(err, &nf) || errors.As(err, &bnf)
}
