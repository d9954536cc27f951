package service

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tieubaoca/docuchat-be/config"
	"github.com/tieubaoca/docuchat-be/types"
)

// Archive keeps a copy of successfully ingested documents in object
// storage. An archive failure never rolls back the ingestion; it is
// reported so the caller can retry archiving independently.
type Archive interface {
	Store(ctx context.Context, localPath, remoteKey string) error
}

// MinioArchive stores documents in an S3-compatible bucket.
type MinioArchive struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioArchive(cfg config.ArchiveConfig) (*MinioArchive, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: archive endpoint and bucket are required", types.ErrConfiguration)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (a *MinioArchive) Store(ctx context.Context, localPath, remoteKey string) error {
	key := remoteKey
	if a.prefix != "" {
		key = a.prefix + "/" + remoteKey
	}
	_, err := a.client.FPutObject(ctx, a.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrArchive, remoteKey, err)
	}
	return nil
}
