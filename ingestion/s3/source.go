// Package s3 fetches tip documents from S3-compatible object storage.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/poiesic/tipindex/core"
	"github.com/poiesic/tipindex/ingestion"
)

var (
	// ErrClientRequired is returned when no S3 client is given.
	ErrClientRequired = errors.New("s3 client required")

	// ErrLocationRequired is returned when the bucket or key is blank.
	ErrLocationRequired = errors.New("s3 bucket and key required")
)

// ObjectGetter is the part of *s3.Client a Source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ClientConfig describes how to reach the bucket.
type ClientConfig struct {
	Region          string
	Endpoint        string // optional, for S3-compatible stores such as MinIO
	AccessKeyID     string // optional; the default credential chain is used when blank
	SecretAccessKey string
}

// NewClient creates an S3 client. A custom endpoint switches to path-style
// addressing.
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Source reads one tip document object. The format follows the key's extension.
type Source struct {
	client ObjectGetter
	bucket string
	key    string
}

var _ ingestion.Source = (*Source)(nil)

// NewSource creates a source for s3://bucket/key.
func NewSource(client ObjectGetter, bucket, key string) (*Source, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	if bucket == "" || key == "" {
		return nil, ErrLocationRequired
	}
	if _, err := ingestion.FormatFromPath(key); err != nil {
		return nil, err
	}
	return &Source{client: client, bucket: bucket, key: key}, nil
}

// Fetch downloads and decodes the object.
func (s *Source) Fetch(ctx context.Context) ([]core.RawTip, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", s.key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", s.key, err)
	}

	format, err := ingestion.FormatFromPath(s.key)
	if err != nil {
		return nil, err
	}
	return ingestion.Decode(bytes.NewReader(data), format)
}

// String returns the object URL.
func (s *Source) String() string {
	return "s3://" + s.bucket + "/" + s.key
}
