package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config describes where rendered images are uploaded.
// Empty credentials fall back to the SDK's default chain.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Custom endpoint for S3-compatible stores; empty for AWS
	Prefix          string // Key prefix, e.g. "renders"
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
}

// DefaultS3Config returns the settings used when nothing is configured
func DefaultS3Config() S3Config {
	return S3Config{
		Region:         "us-east-1",
		Prefix:         "renders",
		ForcePathStyle: true,
	}
}

// Validate reports settings an upload cannot work with
func (c S3Config) Validate() error {
	var errs []error
	if c.Bucket == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("region is required"))
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		errs = append(errs, errors.New("access key id and secret access key must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid s3 config: %w", errors.Join(errs...))
	}
	return nil
}

// S3Uploader puts rendered images into a bucket
type S3Uploader struct {
	config S3Config
	client *s3.S3
}

// NewS3Uploader validates the config and opens an S3 session
func NewS3Uploader(config S3Config) (*S3Uploader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	awsConfig := &aws.Config{
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(config.ForcePathStyle),
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
	}
	if config.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKeyID, config.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &S3Uploader{config: config, client: s3.New(sess)}, nil
}

// Key returns the object key for name under the configured prefix
func (u *S3Uploader) Key(name string) string {
	if u.config.Prefix == "" {
		return strings.TrimPrefix(name, "/")
	}
	return path.Join(u.config.Prefix, name)
}

// URI returns the s3:// location of name
func (u *S3Uploader) URI(name string) string {
	return fmt.Sprintf("s3://%s/%s", u.config.Bucket, u.Key(name))
}

// Upload stores data under the prefixed key
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	key := u.Key(name)
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}
