package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/edvin/skinsight/internal/platform"
)

// Uploader stores uploaded image bodies in an S3-compatible bucket. Objects
// are keyed by environment so multiple deployments can share a bucket.
type Uploader struct {
	client *s3.Client
	logger zerolog.Logger
	bucket string
	env    string
}

// Config holds the S3 connection settings. Endpoint is optional and enables
// path-style addressing for non-AWS backends like MinIO or Ceph RGW.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Env       string
}

func NewUploader(logger zerolog.Logger, cfg Config) *Uploader {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	return &Uploader{
		client: s3.New(opts),
		logger: logger.With().Str("component", "s3-uploader").Logger(),
		bucket: cfg.Bucket,
		env:    cfg.Env,
	}
}

// Upload writes the object body under the given key.
func (u *Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	u.logger.Debug().Str("key", key).Int64("size", size).Msg("uploaded object")
	return nil
}

// Delete removes an object. Missing objects are not an error.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// ObjectKey builds a collision-free storage key for an uploaded file. The
// original filename only contributes its extension.
func (u *Uploader) ObjectKey(filename string) string {
	ext := ""
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			ext = filename[i:]
			break
		}
		if filename[i] == '/' {
			break
		}
	}
	return fmt.Sprintf("%s/images/%s%s", u.env, platform.NewID(), ext)
}
