package service

import (
	"context"
	"errors"

	"vidhub-go/internal/errs"
	"vidhub-go/internal/events"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// IndexSyncService 把视频文档的变化同步到搜索索引（由 worker 消费 Kafka 事件驱动）
type IndexSyncService struct {
	videoRepo VideoRepo
	index     SearchIndex
}

func NewIndexSyncService(videoRepo VideoRepo, index SearchIndex) *IndexSyncService {
	return &IndexSyncService{videoRepo: videoRepo, index: index}
}

// HandleEvent 删除事件移除索引文档，其余视频事件按 MongoDB 最新状态覆盖写入
func (s *IndexSyncService) HandleEvent(ctx context.Context, ev *events.Event) error {
	if !ev.Type.AffectsVideoDocument() || ev.VideoID == "" {
		return nil
	}

	if ev.Type == events.VideoDeleted {
		return s.index.Remove(ctx, ev.VideoID)
	}

	video, err := s.videoRepo.GetByRef(ctx, ev.VideoID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// 事件到达前视频已被删除
			logger.Debug("Video gone before sync, removing from index", zap.String("video_id", ev.VideoID))
			return s.index.Remove(ctx, ev.VideoID)
		}
		return err
	}
	return s.index.Upsert(ctx, video)
}
