// Package storage holds the product image stores behind the catalog's
// ObjectStorageService.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	catalogapp "github.com/farmacia/backend/internal/application/catalog"
	"github.com/farmacia/backend/internal/infrastructure/config"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

var _ catalogapp.ObjectStorageService = (*S3ImageStore)(nil)

// ErrEmptyKey is returned when an operation is called without an object key
var ErrEmptyKey = errors.New("storage key is required")

// S3ImageStore keeps product images in an S3-compatible bucket (AWS, MinIO).
// Clients upload and download directly with presigned URLs.
type S3ImageStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
	clock   clockz.Clock
	logger  *zap.Logger
}

// Option configures an S3ImageStore
type Option func(*S3ImageStore)

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3ImageStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used to compute URL expiry
func WithClock(clock clockz.Clock) Option {
	return func(s *S3ImageStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewS3ImageStore builds a store from the storage section of the config
func NewS3ImageStore(cfg config.StorageConfig, opts ...Option) (*S3ImageStore, error) {
	switch {
	case cfg.Bucket == "":
		return nil, errors.New("storage bucket is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return nil, errors.New("storage credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(regionOrDefault(cfg.Region)),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := &S3ImageStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  cfg.PresignExpiration,
		clock:   clockz.RealClock,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.expiry <= 0 {
		store.expiry = 15 * time.Minute
	}
	return store, nil
}

// Bucket returns the bucket name
func (s *S3ImageStore) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *S3ImageStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	s.logger.Info("Creating image bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// GenerateUploadURL presigns a PUT for the given key and content type
func (s *S3ImageStore) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	expiresIn = s.lifetime(expiresIn)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storageKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, s.clock.Now().Add(expiresIn), nil
}

// GenerateDownloadURL presigns a GET for the given key
func (s *S3ImageStore) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	expiresIn = s.lifetime(expiresIn)

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, s.clock.Now().Add(expiresIn), nil
}

// DeleteObject removes an image. Deleting a missing key succeeds.
func (s *S3ImageStore) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return ErrEmptyKey
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", storageKey, err)
	}
	return nil
}

func (s *S3ImageStore) lifetime(requested time.Duration) time.Duration {
	if requested <= 0 {
		return s.expiry
	}
	return requested
}

func regionOrDefault(region string) string {
	if region == "" {
		return "us-east-1"
	}
	return region
}

// endpointURL adds a scheme to bare host:port endpoints. An empty endpoint
// keeps the SDK's AWS resolution.
func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
