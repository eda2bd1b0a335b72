package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Sink uploads encoded reports to an S3 bucket so a frontend can serve
// the latest crawl without touching the machine that ran it.
type S3Sink struct {
	client *s3.Client
	bucket string
}

// NewS3Sink creates a sink using the default AWS credential chain.
func NewS3Sink(ctx context.Context, bucket string) (*S3Sink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3Sink{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// UploadReport encodes and uploads a report under key. Compressed uploads
// carry a Content-Encoding so browsers can read them directly.
func (s *S3Sink) UploadReport(ctx context.Context, key string, r *Report, compress bool) error {
	data, err := r.Encode(compress)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if compress {
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("uploading report to s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
