package service

import (
	"context"
	"errors"
	"strings"

	"vidhub-go/internal/api/dto"
	"vidhub-go/internal/config"
	"vidhub-go/internal/errs"
	"vidhub-go/internal/model"
	"vidhub-go/pkg/logger"
	"vidhub-go/pkg/utils"

	"go.uber.org/zap"
)

type AuthService struct {
	userRepo UserRepo
}

func NewAuthService(userRepo UserRepo) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register 用户注册，邮箱统一转小写
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, PasswordHash: hashedPassword}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	logger.Info("User registered", zap.Int64("user_id", user.ID))
	return toUserInfo(user), nil
}

// Login 用户登录，返回 token 数据
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenData, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if !utils.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredential
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &dto.TokenData{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(config.GetJWT().ExpireDuration().Seconds()),
		User:      *toUserInfo(user),
	}, nil
}

// Me 当前登录用户
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserInfo(user), nil
}

// IsAdmin 从存储中重新确认管理员身份（不信任 token 中的旧角色）
func (s *AuthService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}
