package service

import (
	"context"
	"errors"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/errs"
	"vidhub-go/pkg/logger"

	"go.uber.org/zap"
)

// UserService 管理员用户管理
type UserService struct {
	userRepo UserRepo
}

func NewUserService(userRepo UserRepo) *UserService {
	return &UserService{userRepo: userRepo}
}

// List 分页列出所有用户
func (s *UserService) List(ctx context.Context, page, limit int) (*dto.UserListData, error) {
	page, limit = clampPage(page, limit, 20, 100)
	users, total, err := s.userRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserInfo, 0, len(users))
	for i := range users {
		items = append(items, *toUserInfo(&users[i]))
	}
	return &dto.UserListData{
		Users:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// SetAdmin 授予或撤销管理员，不能撤销自己
func (s *UserService) SetAdmin(ctx context.Context, actorID, userID int64, isAdmin bool) (*dto.UserInfo, error) {
	if actorID == userID && !isAdmin {
		return nil, ErrCannotDemoteYourself
	}
	if err := s.userRepo.SetAdmin(ctx, userID, isAdmin); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	logger.Info("Admin role changed", zap.Int64("by", actorID), zap.Int64("user_id", userID), zap.Bool("is_admin", isAdmin))
	return toUserInfo(user), nil
}
