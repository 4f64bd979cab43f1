// Package storage keeps payment voucher files outside the ledger database.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const refScheme = "s3://"

// S3VoucherStorage stores vouchers in any S3-compatible bucket (AWS S3,
// MinIO, RustFS). References have the form s3://<bucket>/<key>.
type S3VoucherStorage struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	logger    *zap.Logger
}

type S3Option func(*S3VoucherStorage)

func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3VoucherStorage) {
		s.logger = logger
	}
}

// NewS3VoucherStorage builds a client from cfg. Static credentials are used
// when both keys are set, otherwise the default AWS credential chain.
func NewS3VoucherStorage(ctx context.Context, cfg config.StorageConfig, opts ...S3Option) (*S3VoucherStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	s := &S3VoucherStorage{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3VoucherStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating voucher bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put uploads the voucher and returns its reference.
func (s *S3VoucherStorage) Put(ctx context.Context, file appfinance.VoucherFile) (string, error) {
	if len(file.Data) == 0 {
		return "", errors.New("voucher is empty")
	}
	key := voucherKey(s.keyPrefix, file)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentLength: aws.Int64(int64(len(file.Data))),
		ContentType:   aws.String(file.ContentType),
		Metadata: map[string]string{
			"payment-id":    file.PaymentID.String(),
			"original-name": file.FileName,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload voucher %s: %w", key, err)
	}

	s.logger.Debug("Voucher stored",
		zap.String("key", key),
		zap.Int("bytes", len(file.Data)),
	)
	return refScheme + s.bucket + "/" + key, nil
}

// Delete removes the object behind ref. Deleting a missing object succeeds.
func (s *S3VoucherStorage) Delete(ctx context.Context, ref string) error {
	bucket, key, err := parseRef(ref)
	if err != nil {
		return err
	}
	if bucket != s.bucket {
		return fmt.Errorf("voucher %s is not in bucket %s", ref, s.bucket)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete voucher %s: %w", key, err)
	}
	return nil
}

func parseRef(ref string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(ref, refScheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 voucher reference: %q", ref)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed voucher reference: %q", ref)
	}
	return bucket, key, nil
}

var _ appfinance.FileStorage = (*S3VoucherStorage)(nil)
