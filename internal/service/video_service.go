package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/errs"
	"vidhub-go/internal/events"
	"vidhub-go/internal/metrics"
	"vidhub-go/internal/model"
	"vidhub-go/pkg/logger"
	"vidhub-go/pkg/viewcount"

	"go.uber.org/zap"
)

// Actor 发起操作的用户
type Actor struct {
	UserID  int64
	IsAdmin bool
}

type VideoService struct {
	videoRepo   VideoRepo
	likeRepo    LikeRepo
	commentRepo CommentRepo
	publisher   events.Publisher
	now         func() time.Time
}

func NewVideoService(videoRepo VideoRepo, likeRepo LikeRepo, commentRepo CommentRepo, publisher events.Publisher) *VideoService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &VideoService{
		videoRepo:   videoRepo,
		likeRepo:    likeRepo,
		commentRepo: commentRepo,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// resolveVideo 按应用 ID 查找视频（仓储层兼容旧 ObjectID）
func resolveVideo(ctx context.Context, repo VideoRepo, ref string) (*model.Video, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrVideoNotFound
	}
	v, err := repo.GetByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return v, nil
}

// IncrementView 播放量原子 +1，返回展示格式的新播放量
func (s *VideoService) IncrementView(ctx context.Context, ref string) (*dto.ViewResult, error) {
	video, err := resolveVideo(ctx, s.videoRepo, ref)
	if err != nil {
		return nil, err
	}

	views, err := s.videoRepo.IncrementViews(ctx, video.ObjectID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	metrics.ViewsRecorded.Inc()
	s.publisher.Publish(events.Event{Type: events.VideoViewed, VideoID: video.ID, Views: views})

	return &dto.ViewResult{Views: viewcount.Format(views)}, nil
}

// Get 视频详情（不增加播放量，播放量由客户端按观看进度单独上报）
func (s *VideoService) Get(ctx context.Context, ref string) (*dto.VideoInfo, error) {
	video, err := resolveVideo(ctx, s.videoRepo, ref)
	if err != nil {
		return nil, err
	}
	return toVideoInfo(video), nil
}

// List 按创建时间倒序分页
func (s *VideoService) List(ctx context.Context, page, limit int) (*dto.VideoListData, error) {
	page, limit = clampPage(page, limit, 20, 100)
	videos, total, err := s.videoRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &dto.VideoListData{
		Videos:     toVideoInfos(videos),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// ListMine 当前用户上传的视频
func (s *VideoService) ListMine(ctx context.Context, userID int64) ([]dto.VideoInfo, error) {
	videos, err := s.videoRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toVideoInfos(videos), nil
}

// Create 创建视频元数据；未指定 id 时生成 user-<毫秒时间戳>
func (s *VideoService) Create(ctx context.Context, ownerID int64, req *dto.VideoCreateRequest) (*dto.VideoInfo, error) {
	if req.Rating != "" && !model.ValidRating(req.Rating) {
		return nil, ErrInvalidRating
	}

	owner := ownerID
	video := &model.Video{
		ID:          strings.TrimSpace(req.ID),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		URL:         req.URL,
		Duration:    req.Duration,
		Category:    strings.TrimSpace(req.Category),
		Year:        strings.TrimSpace(req.Year),
		Rating:      req.Rating,
		Owner:       &owner,
	}
	if err := s.insert(ctx, video, video.ID == ""); err != nil {
		return nil, err
	}
	return toVideoInfo(video), nil
}

// insert 写入视频；generateID 为 true 时由时间戳生成 id，冲突时顺延 1ms 重试
func (s *VideoService) insert(ctx context.Context, video *model.Video, generateID bool) error {
	now := s.now()
	video.ApplyDefaults(now)

	millis := now.UnixMilli()
	for attempt := 0; ; attempt++ {
		if generateID {
			video.ID = fmt.Sprintf("user-%d", millis+int64(attempt))
		}
		err := s.videoRepo.Create(ctx, video)
		if err == nil {
			break
		}
		if !errors.Is(err, errs.ErrConflict) {
			return err
		}
		if !generateID || attempt >= 2 {
			return ErrVideoIDTaken
		}
	}

	s.publisher.Publish(events.Event{Type: events.VideoCreated, VideoID: video.ID, UserID: derefOwner(video.Owner)})
	logger.Info("Video created", zap.String("video_id", video.ID), zap.Int64("owner", derefOwner(video.Owner)))
	return nil
}

func derefOwner(owner *int64) int64 {
	if owner == nil {
		return 0
	}
	return *owner
}

// authorize 只有上传者或管理员可以修改、删除
func authorize(video *model.Video, actor Actor) error {
	if actor.IsAdmin || video.OwnedBy(actor.UserID) {
		return nil
	}
	return ErrVideoNoPermission
}

// Update 部分更新元数据
func (s *VideoService) Update(ctx context.Context, actor Actor, ref string, req *dto.VideoUpdateRequest) (*dto.VideoInfo, error) {
	video, err := resolveVideo(ctx, s.videoRepo, ref)
	if err != nil {
		return nil, err
	}
	if err := authorize(video, actor); err != nil {
		return nil, err
	}
	if req.Rating != nil && !model.ValidRating(*req.Rating) {
		return nil, ErrInvalidRating
	}

	upd := &model.VideoUpdate{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		URL:         req.URL,
		Duration:    req.Duration,
		Category:    req.Category,
		Year:        req.Year,
		Rating:      req.Rating,
	}
	if upd.Empty() {
		return nil, ErrNoFieldsToUpdate
	}

	updated, err := s.videoRepo.Update(ctx, video.ObjectID, upd)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	s.publisher.Publish(events.Event{Type: events.VideoUpdated, VideoID: updated.ID, UserID: actor.UserID})
	return toVideoInfo(updated), nil
}

// Delete 删除视频，随后依次删除点赞、评论。
// 后两步失败只记录日志，不回滚也不重试，可能留下孤立记录。
func (s *VideoService) Delete(ctx context.Context, actor Actor, ref string) error {
	video, err := resolveVideo(ctx, s.videoRepo, ref)
	if err != nil {
		return err
	}
	if err := authorize(video, actor); err != nil {
		return err
	}

	if err := s.videoRepo.Delete(ctx, video.ObjectID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	if n, err := s.likeRepo.DeleteByVideo(ctx, video.ID); err != nil {
		logger.Error("Cascade delete likes failed", zap.String("video_id", video.ID), zap.Error(err))
	} else {
		logger.Debug("Cascade deleted likes", zap.String("video_id", video.ID), zap.Int64("count", n))
	}
	if n, err := s.commentRepo.DeleteByVideo(ctx, video.ID); err != nil {
		logger.Error("Cascade delete comments failed", zap.String("video_id", video.ID), zap.Error(err))
	} else {
		logger.Debug("Cascade deleted comments", zap.String("video_id", video.ID), zap.Int64("count", n))
	}

	s.publisher.Publish(events.Event{Type: events.VideoDeleted, VideoID: video.ID, UserID: actor.UserID})
	logger.Info("Video deleted", zap.String("video_id", video.ID), zap.Int64("by", actor.UserID))
	return nil
}

// Stats 当前用户所有上传视频的播放、点赞、评论汇总
func (s *VideoService) Stats(ctx context.Context, userID int64) (*dto.UserStats, error) {
	videos, err := s.videoRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &dto.UserStats{TotalUploads: int64(len(videos))}
	ids := make([]string, 0, len(videos))
	for i := range videos {
		stats.TotalViews += int64(videos[i].Views)
		stats.TotalLikes += videos[i].LikesCount
		ids = append(ids, videos[i].ID)
	}
	if len(ids) > 0 {
		if stats.TotalComments, err = s.commentRepo.CountByVideos(ctx, ids); err != nil {
			return nil, err
		}
	}
	stats.TotalViewsFmt = viewcount.Format(stats.TotalViews)
	return stats, nil
}

// MigrateLegacyViews 启动时把字符串播放量迁移为整数
func (s *VideoService) MigrateLegacyViews(ctx context.Context) error {
	n, err := s.videoRepo.MigrateLegacyViews(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Legacy view counts migrated", zap.Int("count", n))
	}
	return nil
}

// Seed 库为空时写入示例视频，返回写入条数
func (s *VideoService) Seed(ctx context.Context) (int, error) {
	count, err := s.videoRepo.Count(ctx)
	if err != nil || count > 0 {
		return 0, err
	}

	base := s.now().Add(-time.Duration(len(sampleVideos)) * time.Hour)
	for i, sample := range sampleVideos {
		v := sample.toVideo()
		v.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		v.ApplyDefaults(s.now())
		if err := s.videoRepo.Create(ctx, v); err != nil && !errors.Is(err, errs.ErrConflict) {
			return i, err
		}
	}
	logger.Info("Sample videos seeded", zap.Int("count", len(sampleVideos)))
	return len(sampleVideos), nil
}
