package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vidhub-go/internal/config"
	"vidhub-go/internal/events"
	"vidhub-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者
func InitProducer(cfg *config.KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka brokers is empty")
	}
	producer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Brokers))
	return nil
}

// PublishEvent 发送互动事件，按视频 ID 分区保证同一视频的事件有序
func PublishEvent(ctx context.Context, topic string, ev *events.Event) error {
	if producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(ev.VideoID),
		Value: payload,
	}
	if err := producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}

	logger.Debug("Event sent",
		zap.String("type", string(ev.Type)),
		zap.String("video_id", ev.VideoID),
		zap.String("topic", topic),
	)
	return nil
}

// EventSink 返回一个事件总线订阅者，把事件转发到 Kafka
func EventSink(topic string) events.Handler {
	return func(ctx context.Context, ev events.Event) error {
		sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return PublishEvent(sendCtx, topic, &ev)
	}
}

// CloseProducer 关闭生产者
func CloseProducer() error {
	if producer == nil {
		return nil
	}
	logger.Info("Kafka producer closed")
	return producer.Close()
}
