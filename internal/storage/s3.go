// Package storage puts uploaded objects into an S3 bucket and returns their public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/config"
)

// ErrNotConfigured is returned by uploads when no bucket is configured.
var ErrNotConfigured = errors.New("object storage is not configured")

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads objects to one bucket.
type S3 struct {
	client objectPutter
	bucket string
	region string
	log    zerolog.Logger
}

// NewS3 builds a client from static credentials when given, otherwise from the default AWS chain.
func NewS3(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newS3(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Region, logger), nil
}

func newS3(client objectPutter, bucket, region string, logger zerolog.Logger) *S3 {
	return &S3{
		client: client,
		bucket: bucket,
		region: region,
		log:    logger.With().Str("module", "storage").Str("component", "s3").Logger(),
	}
}

// Put stores body under key and returns the object's public URL.
func (s *S3) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	if s.bucket == "" {
		return "", ErrNotConfigured
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("put object failed")
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	s.log.Info().Str("key", key).Int64("bytes", size).Msg("object stored")
	return s.URL(key), nil
}

// URL is the virtual-hosted-style address of key.
func (s *S3) URL(key string) string {
	u := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", s.bucket, s.region),
		Path:   "/" + key,
	}
	return u.String()
}
