package repository

import (
	"context"

	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create 重复订阅返回 Conflict
func (r *SubscriptionRepository) Create(ctx context.Context, subscriberID, channelID int64) error {
	sub := &model.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	return translate(r.db.WithContext(ctx).Create(sub).Error)
}

func (r *SubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&model.Subscription{})
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *SubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	return count > 0, translate(err)
}

// ListChannels 某用户订阅的频道 ID，按订阅时间倒序
func (r *SubscriptionRepository) ListChannels(ctx context.Context, subscriberID int64, skip, limit int) ([]int64, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Subscription{}).Where("subscriber_id = ?", subscriberID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var ids []int64
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Pluck("channel_id", &ids).Error
	return ids, total, translate(err)
}

// CountSubscribers 频道订阅数
func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subscription{}).Where("channel_id = ?", channelID).Count(&count).Error
	return count, translate(err)
}
