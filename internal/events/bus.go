package events

import (
	"context"
	"sync"
	"time"

	"vidhub-go/internal/metrics"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// Handler 订阅者回调，返回的错误只记录日志
type Handler func(ctx context.Context, ev Event) error

type subscriber struct {
	name    string
	ch      chan Event
	handler Handler
}

// Bus 带缓冲的发布订阅总线，每个订阅者一个 goroutine
type Bus struct {
	mu     sync.RWMutex
	subs   []*subscriber
	closed bool
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewBus 创建总线
func NewBus() *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{ctx: ctx, cancel: cancel}
}

// Subscribe 注册订阅者，buffer 为该订阅者的队列长度
func (b *Bus) Subscribe(name string, buffer int, h Handler) {
	if buffer <= 0 {
		buffer = 256
	}
	s := &subscriber{name: name, ch: make(chan Event, buffer), handler: h}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.subs = append(b.subs, s)

	b.wg.Add(1)
	go b.run(s)
}

func (b *Bus) run(s *subscriber) {
	defer b.wg.Done()
	for ev := range s.ch {
		if err := s.handler(b.ctx, ev); err != nil {
			logger.Warn("Event handler failed",
				zap.String("subscriber", s.name),
				zap.String("type", string(ev.Type)),
				zap.String("video_id", ev.VideoID),
				zap.Error(err),
			)
		}
	}
}

// Publish 非阻塞投递；订阅者队列满时丢弃并告警
func (b *Bus) Publish(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			metrics.EventsDropped.WithLabelValues(s.name).Inc()
			logger.Warn("Event dropped, subscriber queue full",
				zap.String("subscriber", s.name),
				zap.String("type", string(ev.Type)),
			)
		}
	}
}

// Close 停止接收新事件，等待已入队事件处理完毕或 timeout 到期
func (b *Bus) Close(timeout time.Duration) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("Event bus close timed out, cancelling handlers")
	}
	b.cancel()
}
