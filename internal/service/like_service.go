package service

import (
	"context"
	"errors"
	"time"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/errs"
	"vidhub-go/internal/events"
	"vidhub-go/internal/metrics"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

type LikeService struct {
	likeRepo  LikeRepo
	videoRepo VideoRepo
	cache     *CacheService
	publisher events.Publisher
	statusTTL time.Duration
}

func NewLikeService(likeRepo LikeRepo, videoRepo VideoRepo, cache *CacheService, publisher events.Publisher, statusTTL time.Duration) *LikeService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LikeService{
		likeRepo:  likeRepo,
		videoRepo: videoRepo,
		cache:     cache,
		publisher: publisher,
		statusTTL: statusTTL,
	}
}

// ToggleLike 已点赞则取消，未点赞则点赞。
// 点赞记录以 (user, video) 唯一索引保证不重复；只有记录真正写入/删除后才调整计数，
// 并发重复点赞时失败的一方得到 ErrLikeConflict，计数不变。
// 计数更新失败时撤销刚才对点赞记录的修改，记录与计数保持一致。
func (s *LikeService) ToggleLike(ctx context.Context, userID int64, ref string) (*dto.LikeResult, error) {
	video, err := resolveVideo(ctx, s.videoRepo, ref)
	if err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.Exists(ctx, userID, video.ID)
	if err != nil {
		return nil, err
	}

	result := &dto.LikeResult{}
	if liked {
		removed, err := s.likeRepo.Delete(ctx, userID, video.ID)
		if err != nil {
			return nil, err
		}
		result.LikesCount = video.LikesCount
		if removed {
			if result.LikesCount, err = s.videoRepo.AdjustLikes(ctx, video.ObjectID, -1); err != nil {
				s.restoreLike(ctx, userID, video.ID, true)
				return nil, s.counterError(err)
			}
		}
		result.Liked = false
		metrics.LikeToggles.WithLabelValues("unliked").Inc()
		s.publisher.Publish(events.Event{Type: events.VideoUnliked, VideoID: video.ID, UserID: userID, LikesCount: result.LikesCount})
	} else {
		if err := s.likeRepo.Create(ctx, userID, video.ID); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				metrics.LikeToggles.WithLabelValues("conflict").Inc()
				return nil, ErrLikeConflict
			}
			return nil, err
		}
		if result.LikesCount, err = s.videoRepo.AdjustLikes(ctx, video.ObjectID, 1); err != nil {
			s.restoreLike(ctx, userID, video.ID, false)
			return nil, s.counterError(err)
		}
		result.Liked = true
		metrics.LikeToggles.WithLabelValues("liked").Inc()
		s.publisher.Publish(events.Event{Type: events.VideoLiked, VideoID: video.ID, UserID: userID, LikesCount: result.LikesCount})
	}

	s.cache.Delete(ctx, keyLikedBy(video.ID, userID))
	return result, nil
}

// restoreLike 把点赞记录恢复为 liked 状态；请求已取消时仍然执行
func (s *LikeService) restoreLike(ctx context.Context, userID int64, videoID string, liked bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var err error
	if liked {
		err = s.likeRepo.Create(ctx, userID, videoID)
		if errors.Is(err, errs.ErrConflict) {
			err = nil
		}
	} else {
		_, err = s.likeRepo.Delete(ctx, userID, videoID)
	}
	if err != nil {
		logger.Error("Restore like record failed",
			zap.Int64("user_id", userID),
			zap.String("video_id", videoID),
			zap.Bool("liked", liked),
			zap.Error(err),
		)
	}
}

func (s *LikeService) counterError(err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return ErrVideoNotFound
	}
	logger.Error("Adjust likes counter failed", zap.Error(err))
	return err
}

// GetLikeStatus 点赞数与当前用户是否已点赞，userID 为 nil 时 isLiked 恒为 false
func (s *LikeService) GetLikeStatus(ctx context.Context, ref string, userID *int64) (*dto.LikeStatus, error) {
	video, err := resolveVideo(ctx, s.videoRepo, ref)
	if err != nil {
		return nil, err
	}

	status := &dto.LikeStatus{LikesCount: video.LikesCount}
	if userID == nil {
		return status, nil
	}

	key := keyLikedBy(video.ID, *userID)
	if s.cache.GetJSON(ctx, key, &status.IsLiked) {
		return status, nil
	}
	if status.IsLiked, err = s.likeRepo.Exists(ctx, *userID, video.ID); err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, status.IsLiked, s.statusTTL)
	return status, nil
}
