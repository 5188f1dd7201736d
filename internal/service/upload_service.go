package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"vidhub-go/internal/api/dto"
	infraMinio "vidhub-go/internal/infra/minio"
	"vidhub-go/internal/model"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// UploadFile 待上传的文件
type UploadFile struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
}

func (f *UploadFile) ext(fallback string) string {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if ext == "" {
		return fallback
	}
	return ext
}

type UploadService struct {
	videos           *VideoService
	storage          ObjectStorage
	defaultThumbnail string
}

// NewUploadService storage 为 nil 时上传接口返回 503
func NewUploadService(videos *VideoService, storage ObjectStorage, defaultThumbnail string) *UploadService {
	return &UploadService{videos: videos, storage: storage, defaultThumbnail: defaultThumbnail}
}

// Upload 上传视频文件（及可选封面）到对象存储并创建视频记录，id 为 user-<毫秒时间戳>
func (s *UploadService) Upload(ctx context.Context, ownerID int64, req *dto.VideoUploadRequest, video *UploadFile, thumb *UploadFile) (*dto.VideoInfo, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if video == nil || video.Reader == nil || video.Size <= 0 {
		return nil, ErrMissingVideoFile
	}
	if req.Rating != "" && !model.ValidRating(req.Rating) {
		return nil, ErrInvalidRating
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	id := fmt.Sprintf("user-%d", s.videos.now().UnixMilli())
	contentType := video.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}
	videoURL, err := s.storage.Put(uploadCtx, infraMinio.KindVideo, id+video.ext(".mp4"), video.Reader, video.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("上传视频文件失败: %w", err)
	}

	thumbnail := s.defaultThumbnail
	if thumb != nil && thumb.Reader != nil && thumb.Size > 0 {
		thumbType := thumb.ContentType
		if thumbType == "" {
			thumbType = "image/jpeg"
		}
		thumbURL, err := s.storage.Put(uploadCtx, infraMinio.KindThumbnail, id+thumb.ext(".jpg"), thumb.Reader, thumb.Size, thumbType)
		if err != nil {
			logger.Warn("Thumbnail upload failed, using placeholder", zap.String("video_id", id), zap.Error(err))
		} else {
			thumbnail = thumbURL
		}
	}

	owner := ownerID
	v := &model.Video{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Thumbnail:   thumbnail,
		URL:         videoURL,
		Duration:    req.Duration,
		Category:    strings.TrimSpace(req.Category),
		Year:        strings.TrimSpace(req.Year),
		Rating:      req.Rating,
		Owner:       &owner,
	}
	if err := s.videos.insert(ctx, v, false); err != nil {
		logger.Error("Create video record failed, removing uploaded objects", zap.String("video_id", id), zap.Error(err))
		s.cleanup(videoURL, thumbnail)
		return nil, err
	}
	return toVideoInfo(v), nil
}

func (s *UploadService) cleanup(videoURL, thumbnail string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.storage.Remove(ctx, infraMinio.KindVideo, videoURL); err != nil {
		logger.Warn("Remove orphan video object failed", zap.String("url", videoURL), zap.Error(err))
	}
	if thumbnail != s.defaultThumbnail {
		if err := s.storage.Remove(ctx, infraMinio.KindThumbnail, thumbnail); err != nil {
			logger.Warn("Remove orphan thumbnail failed", zap.String("url", thumbnail), zap.Error(err))
		}
	}
}
