// Package s3 provides an S3-backed store.BlobStore for archived attachments.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rbaliyan/ews/store"
)

const scheme = "s3://"

// Store implements store.BlobStore using AWS S3.
type Store struct {
	client *s3.Client
	tm     *transfermanager.Client
	bucket string
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

var _ store.BlobStore = (*Store)(nil)

// New creates a new S3 blob store.
// The context is used for AWS credential loading and configuration.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	o := newOptions(opts...)
	if o.bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	awsCfg, err := buildAWSConfig(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("build aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = o.usePathStyle
		}
	})

	return &Store{
		client: client,
		tm:     transfermanager.New(client),
		bucket: o.bucket,
		prefix: o.prefix,
		logger: o.logger,
		now:    time.Now,
	}, nil
}

// buildAWSConfig builds AWS config based on authentication options.
// Without explicit credentials the SDK default chain applies (environment,
// shared config, EC2/ECS roles, IRSA on EKS).
func buildAWSConfig(ctx context.Context, o *options) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{config.WithRegion(o.region)}

	switch {
	case o.accessKey != "" && o.secretKey != "":
		creds := credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, o.sessionToken)
		optFns = append(optFns, config.WithCredentialsProvider(creds))

	case o.roleARN != "":
		baseCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(o.region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("load base config for role: %w", err)
		}
		optFns = append(optFns, config.WithCredentialsProvider(newAssumeRoleProvider(baseCfg, o)))
	}

	return config.LoadDefaultConfig(ctx, optFns...)
}

// Put uploads content and returns an s3://bucket/key URI. Labels are
// stored as object metadata.
func (s *Store) Put(ctx context.Context, info store.BlobInfo, content io.Reader) (string, error) {
	key := s.generateKey(info.Name)

	input := &transfermanager.UploadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   content,
	}
	if info.ContentType != "" {
		input.ContentType = aws.String(info.ContentType)
	}
	if len(info.Labels) > 0 {
		input.Metadata = info.Labels
	}

	if _, err := s.tm.UploadObject(ctx, input); err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	s.logger.Debug("archived attachment to s3", "bucket", s.bucket, "key", key)
	return scheme + s.bucket + "/" + key, nil
}

// Open returns a reader for the object content.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, uri)
		}
		return nil, fmt.Errorf("get object from s3: %w", err)
	}
	return output.Body, nil
}

// Delete removes the object from S3.
func (s *Store) Delete(ctx context.Context, uri string) error {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object from s3: %w", err)
	}

	s.logger.Debug("deleted archived attachment from s3", "bucket", bucket, "key", key)
	return nil
}

// generateKey creates a unique date-partitioned key.
func (s *Store) generateKey(filename string) string {
	now := s.now().UTC()
	return path.Join(s.prefix, now.Format("2006/01/02"), uuid.New().String(), path.Base("/"+filename))
}

// parseS3URI parses an s3:// URI into bucket and key.
func parseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", store.ErrInvalidURI, uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w (no key): %s", store.ErrInvalidURI, uri)
	}
	return bucket, key, nil
}
