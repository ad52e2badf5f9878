package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"cutroom/config"
	"cutroom/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
	minioBucket string
)

// InitMinio connects the MinIO client and makes sure the media bucket
// exists. The global client is only assigned after the bucket check
// succeeds.
func InitMinio(cfg *config.Config) error {
	logger.Info("connecting to MinIO",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("created media bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	minioBucket = cfg.MinioBucket
	logger.Info("MinIO client initialized")
	return nil
}

// GetMinioClient returns the MinIO client instance, nil before InitMinio.
func GetMinioClient() *minio.Client {
	return minioClient
}

// UploadMedia stores a media object in the bucket.
func UploadMedia(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	if minioClient == nil {
		return fmt.Errorf("minio client not initialized")
	}
	_, err := minioClient.PutObject(ctx, minioBucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	logger.Info("media uploaded",
		logger.String("object", objectName),
		logger.Int64("size", size),
		logger.String("contentType", contentType))
	return nil
}

// OpenMedia opens a stored media object for reading. The returned info
// carries size and content type for response headers.
func OpenMedia(ctx context.Context, objectName string) (*minio.Object, minio.ObjectInfo, error) {
	if minioClient == nil {
		return nil, minio.ObjectInfo{}, fmt.Errorf("minio client not initialized")
	}
	info, err := minioClient.StatObject(ctx, minioBucket, objectName, minio.StatObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, fmt.Errorf("failed to stat %s: %w", objectName, err)
	}
	obj, err := minioClient.GetObject(ctx, minioBucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, fmt.Errorf("failed to open %s: %w", objectName, err)
	}
	return obj, info, nil
}
