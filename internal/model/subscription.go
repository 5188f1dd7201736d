package model

import "time"

// Subscription 频道订阅关系（PostgreSQL）
type Subscription struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;comment:订阅记录id" json:"id"`
	SubscriberID int64     `gorm:"not null;uniqueIndex:uq_subscriber_channel;index:idx_subscriber_id;comment:订阅者用户id" json:"subscriber_id"`
	ChannelID    int64     `gorm:"not null;uniqueIndex:uq_subscriber_channel;index:idx_channel_id;comment:被订阅用户id" json:"channel_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_subscriptions_created_at;comment:订阅时间" json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
