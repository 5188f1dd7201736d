package service

import (
	"context"
	"errors"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/errs"
)

type SubscriptionService struct {
	subRepo  SubscriptionRepo
	userRepo UserRepo
}

func NewSubscriptionService(subRepo SubscriptionRepo, userRepo UserRepo) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo}
}

func (s *SubscriptionService) ensureChannel(ctx context.Context, channelID int64) error {
	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		return notFoundAs(err, ErrUserNotFound)
	}
	return nil
}

// Subscribe 订阅频道（频道即用户）
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, channelID int64) (*dto.SubscriptionStatus, error) {
	if subscriberID == channelID {
		return nil, ErrCannotSubscribeSelf
	}
	if err := s.ensureChannel(ctx, channelID); err != nil {
		return nil, err
	}

	if err := s.subRepo.Create(ctx, subscriberID, channelID); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	return s.Status(ctx, subscriberID, channelID)
}

// Unsubscribe 取消订阅
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, channelID int64) (*dto.SubscriptionStatus, error) {
	removed, err := s.subRepo.Delete(ctx, subscriberID, channelID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrSubscriptionNotFound
	}
	return s.Status(ctx, subscriberID, channelID)
}

// Status 订阅状态与频道订阅数
func (s *SubscriptionService) Status(ctx context.Context, subscriberID, channelID int64) (*dto.SubscriptionStatus, error) {
	if err := s.ensureChannel(ctx, channelID); err != nil {
		return nil, err
	}
	subscribed, err := s.subRepo.Exists(ctx, subscriberID, channelID)
	if err != nil {
		return nil, err
	}
	count, err := s.subRepo.CountSubscribers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionStatus{Subscribed: subscribed, Subscribers: count}, nil
}

// List 当前用户订阅的频道，按订阅时间倒序
func (s *SubscriptionService) List(ctx context.Context, subscriberID int64, page, limit int) (*dto.SubscriptionListData, error) {
	page, limit = clampPage(page, limit, 20, 100)
	ids, total, err := s.subRepo.ListChannels(ctx, subscriberID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	emails := make(map[int64]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	channels := make([]dto.ChannelInfo, 0, len(ids))
	for _, id := range ids {
		email, ok := emails[id]
		if !ok {
			continue
		}
		count, err := s.subRepo.CountSubscribers(ctx, id)
		if err != nil {
			return nil, err
		}
		channels = append(channels, dto.ChannelInfo{ID: id, Email: email, Subscribers: count})
	}

	return &dto.SubscriptionListData{
		Channels:   channels,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
