package kafka

import (
	"context"
	"encoding/json"
	"time"

	"vidhub-go/internal/events"
	"vidhub-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventHandler 处理消费到的事件
type EventHandler func(ctx context.Context, ev *events.Event) error

// StartEventConsumer 启动事件消费者（阻塞，需在 goroutine 中运行或作为 worker 主循环）
// ctx 取消后自动停止
func StartEventConsumer(ctx context.Context, brokers []string, topic, groupID string, handler EventHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("Failed to close kafka consumer", zap.Error(err))
		}
		logger.Info("Kafka event consumer stopped")
	}()

	logger.Info("Kafka event consumer started",
		zap.String("topic", topic),
		zap.String("group", groupID),
	)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to read kafka message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var ev events.Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			logger.Error("Failed to unmarshal event",
				zap.Error(err),
				zap.ByteString("value", msg.Value),
			)
			continue
		}

		if err := handler(ctx, &ev); err != nil {
			logger.Error("Failed to handle event",
				zap.String("type", string(ev.Type)),
				zap.String("video_id", ev.VideoID),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}
