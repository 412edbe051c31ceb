// Package s3store moves container files between the local filesystem and S3.
package s3store

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/eunmann/ccf/internal/logctx"
	"github.com/eunmann/ccf/pkg/fileutil"
)

const contentType = "application/octet-stream"

// TransferConfig configures multipart uploads and parallel range downloads.
type TransferConfig struct {
	// Concurrency is the number of parts transferred at once.
	// Default: NumCPU clamped to [4, 16].
	Concurrency int

	// PartSize is the size of each part in bytes. Default: 16MB.
	PartSize int64
}

// DefaultTransferConfig returns defaults based on the current machine.
func DefaultTransferConfig() TransferConfig {
	concurrency := min(max(runtime.NumCPU(), 4), 16)
	return TransferConfig{
		Concurrency: concurrency,
		PartSize:    16 * 1024 * 1024,
	}
}

func (c TransferConfig) withDefaults() TransferConfig {
	def := DefaultTransferConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.PartSize <= 0 {
		c.PartSize = def.PartSize
	}
	return c
}

// TransferResult describes a completed upload or download.
type TransferResult struct {
	Bucket   string
	Key      string
	Bytes    int64
	Duration time.Duration
}

// Client uploads and downloads container files.
type Client struct {
	uploader   *manager.Uploader
	downloader *manager.Downloader
	config     TransferConfig
}

// NewClient creates a client from the default AWS configuration chain.
// A non-empty region overrides the configured one.
func NewClient(ctx context.Context, region string, cfg TransferConfig) (*Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewClientWithConfig(awsCfg, cfg), nil
}

// NewClientWithConfig creates a client with a custom AWS config.
func NewClientWithConfig(awsCfg aws.Config, cfg TransferConfig) *Client {
	cfg = cfg.withDefaults()
	s3Client := s3.NewFromConfig(awsCfg)

	return &Client{
		uploader: manager.NewUploader(s3Client, func(u *manager.Uploader) {
			u.Concurrency = cfg.Concurrency
			u.PartSize = cfg.PartSize
		}),
		downloader: manager.NewDownloader(s3Client, func(d *manager.Downloader) {
			d.Concurrency = cfg.Concurrency
			d.PartSize = cfg.PartSize
		}),
		config: cfg,
	}
}

// Config returns the transfer configuration.
func (c *Client) Config() TransferConfig {
	return c.config
}

// Upload copies the local file at path to s3://bucket/key.
func (c *Client) Upload(ctx context.Context, path, bucket, key string) (*TransferResult, error) {
	log := logctx.FromContext(ctx)
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if _, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	}); err != nil {
		return nil, fmt.Errorf("upload %s: %w", FormatS3URI(bucket, key), err)
	}

	result := &TransferResult{Bucket: bucket, Key: key, Bytes: info.Size(), Duration: time.Since(start)}
	log.Debug().
		Str("uri", FormatS3URI(bucket, key)).
		Int64("bytes", result.Bytes).
		Dur("duration", result.Duration).
		Msg("uploaded object")
	return result, nil
}

// Download copies s3://bucket/key to destPath. The object is written to a
// temporary file first; destPath only appears once the download completes.
func (c *Client) Download(ctx context.Context, bucket, key, destPath string) (*TransferResult, error) {
	log := logctx.FromContext(ctx)
	start := time.Now()

	var n int64
	err := fileutil.WriteTmpThenMove(tmpDirFor(destPath), destPath, func(tmpPath string) error {
		f, err := os.Create(tmpPath)
		if err != nil {
			return fmt.Errorf("create temp file: %w", err)
		}
		defer f.Close()

		n, err = c.downloader.Download(ctx, f, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("download %s: %w", FormatS3URI(bucket, key), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &TransferResult{Bucket: bucket, Key: key, Bytes: n, Duration: time.Since(start)}
	log.Debug().
		Str("uri", FormatS3URI(bucket, key)).
		Int64("bytes", result.Bytes).
		Dur("duration", result.Duration).
		Msg("downloaded object")
	return result, nil
}

// DownloadTemp downloads s3://bucket/key into a new temporary file and
// returns its path. The caller removes the file when done.
func (c *Client) DownloadTemp(ctx context.Context, bucket, key string) (string, error) {
	f, err := os.CreateTemp("", "ccf-download-*.ccf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	_, err = c.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	closeErr := f.Close()
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("download %s: %w", FormatS3URI(bucket, key), err)
	}
	if closeErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", closeErr)
	}
	return path, nil
}
