package minio

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"vidhub-go/internal/config"
	"vidhub-go/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var (
	client *minio.Client
	cfgRef *config.MinIOConfig
)

// Init 初始化 MinIO 客户端，确保视频与封面 Bucket 存在且公开可读
func Init(cfg *config.MinIOConfig) error {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bucket := range []string{cfg.VideoBucket, cfg.ThumbBucket} {
		exists, err := c.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			logger.Info("MinIO bucket created", zap.String("bucket", bucket))
		}

		// 前端直接通过 URL 播放视频、加载封面
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
		if err := c.SetBucketPolicy(ctx, bucket, policy); err != nil {
			return fmt.Errorf("failed to set public policy for %s: %w", bucket, err)
		}
	}

	client = c
	cfgRef = cfg
	logger.Info("MinIO connected",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("video_bucket", cfg.VideoBucket),
		zap.String("thumb_bucket", cfg.ThumbBucket),
	)
	return nil
}

// UploadFile 上传文件到指定 Bucket，返回对象名
func UploadFile(ctx context.Context, bucket, objectName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	if client == nil {
		return "", fmt.Errorf("minio client not initialized")
	}
	_, err := client.PutObject(ctx, bucket, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to minio: %w", err)
	}
	return objectName, nil
}

// RemoveFile 删除对象，不存在时不报错
func RemoveFile(ctx context.Context, bucket, objectName string) error {
	if client == nil {
		return fmt.Errorf("minio client not initialized")
	}
	return client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}

// GetPublicURL 生成公开访问 URL（Bucket 已设置为 public-read）
func GetPublicURL(endpoint string, useSSL bool, bucket, objectName string) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, bucket, objectName)
}

// Storage 面向业务层的对象存储，按用途（视频/封面）选择 Bucket
type Storage struct{}

// NewStorage 需在 Init 成功后调用
func NewStorage() *Storage {
	return &Storage{}
}

// 对象用途
const (
	KindVideo     = "video"
	KindThumbnail = "thumbnail"
)

func (s *Storage) bucket(kind string) string {
	if kind == KindThumbnail {
		return cfgRef.ThumbBucket
	}
	return cfgRef.VideoBucket
}

// Put 上传对象并返回可公开访问的 URL
func (s *Storage) Put(ctx context.Context, kind, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	bucket := s.bucket(kind)
	if _, err := UploadFile(ctx, bucket, objectName, r, size, contentType); err != nil {
		return "", err
	}
	endpoint := cfgRef.PublicEndpoint
	if endpoint == "" {
		endpoint = cfgRef.Endpoint
	}
	return GetPublicURL(endpoint, cfgRef.UseSSL, bucket, objectName), nil
}

// Remove 根据 Put 返回的 URL 删除对象；非本存储的 URL 直接忽略
func (s *Storage) Remove(ctx context.Context, kind, url string) error {
	bucket := s.bucket(kind)
	marker := "/" + bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return nil
	}
	return RemoveFile(ctx, bucket, url[idx+len(marker):])
}
