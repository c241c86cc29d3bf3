package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yigit/edutech/internal/pkg/logger"
)

// S3Config holds the connection settings for an S3-compatible object store
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicURL overrides the URL prefix returned to clients (CDN, proxy)
	PublicURL string
}

// objectPutter is the part of the minio client used by S3Storage
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Storage stores uploads in a bucket
type S3Storage struct {
	client    objectPutter
	bucket    string
	publicURL string
}

// NewS3Storage connects to the object store and makes sure the bucket exists
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info().Str("bucket", cfg.Bucket).Msg("Created storage bucket")
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	return newS3Storage(client, cfg.Bucket, publicURL), nil
}

func newS3Storage(client objectPutter, bucket, publicURL string) *S3Storage {
	return &S3Storage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload puts the buffer into the bucket and returns its public URL
func (s *S3Storage) Upload(ctx context.Context, file File) (string, error) {
	if len(file.Data) == 0 {
		return "", ErrEmptyFile
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := objectKey(file)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(file.Data), int64(len(file.Data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		logger.Error().Err(err).Str("bucket", s.bucket).Str("key", key).Msg("Failed to put object")
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}
