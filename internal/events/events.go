// Package events 进程内的互动事件总线。
//
// 请求路径只负责 Publish，订阅者（Kafka 投递、缓存失效、索引同步）
// 各自在独立 goroutine 中消费，任何订阅者变慢都不会阻塞请求。
package events

import "time"

// Type 事件类型
type Type string

const (
	VideoCreated   Type = "video.created"
	VideoUpdated   Type = "video.updated"
	VideoDeleted   Type = "video.deleted"
	VideoViewed    Type = "video.viewed"
	VideoLiked     Type = "video.liked"
	VideoUnliked   Type = "video.unliked"
	CommentAdded   Type = "comment.added"
	CommentDeleted Type = "comment.deleted"
)

// AffectsVideoDocument 该事件是否改变了视频文档（需要同步搜索索引）
func (t Type) AffectsVideoDocument() bool {
	switch t {
	case VideoCreated, VideoUpdated, VideoDeleted, VideoViewed, VideoLiked, VideoUnliked:
		return true
	}
	return false
}

// AffectsFilterOptions 该事件是否可能改变分类/年份候选项
func (t Type) AffectsFilterOptions() bool {
	return t == VideoCreated || t == VideoUpdated || t == VideoDeleted
}

// Event 互动事件，同时也是 Kafka 消息体
type Event struct {
	Type       Type      `json:"type"`
	VideoID    string    `json:"videoId"`
	UserID     int64     `json:"userId,omitempty"`
	CommentID  string    `json:"commentId,omitempty"`
	Views      int64     `json:"views,omitempty"`
	LikesCount int64     `json:"likesCount,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher 事件发布方
type Publisher interface {
	Publish(ev Event)
}

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) Publish(Event) {}
