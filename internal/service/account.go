package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/repository"
	"taskflow/pkg/logger"

	"gorm.io/gorm"
)

// AccountService 账号服务接口
type AccountService interface {
	// Register 注册账号并签发令牌
	Register(ctx context.Context, req *model.RegisterRequest) (*model.LoginResponse, error)

	// Login 使用邮箱或用户名登录
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)

	// Logout 吊销访问令牌
	Logout(ctx context.Context, accessToken string) error

	// Me 获取当前用户
	Me(ctx context.Context, userID string) (*model.UserResponse, error)
}

// accountService 账号服务实现
type accountService struct {
	userRepo     repository.UserRepository
	tokenService TokenService
	activity     ActivityRecorder
}

// NewAccountService 创建账号服务实例
func NewAccountService(userRepo repository.UserRepository, tokenService TokenService, activity ActivityRecorder) AccountService {
	return &accountService{
		userRepo:     userRepo,
		tokenService: tokenService,
		activity:     recorderOrNoop(activity),
	}
}

// Register 用户注册
func (s *accountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if confirm := req.Confirmation(); confirm != "" && confirm != req.Password {
		return nil, ErrPasswordMismatch
	}

	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	user := &model.User{
		Username:    req.Username,
		Email:       email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Status:      model.UserStatusEnabled,
	}
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user registered: %s (%s)", user.Username, user.ID)
	s.activity.Record("register", "users", user.ID, user.ID)
	return s.issue(ctx, user)
}

// Login 用户登录
func (s *accountService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier())
	if identifier == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.ValidatePassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status != model.UserStatusEnabled {
		return nil, ErrUserDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Warn("failed to update last login for %s: %v", user.ID, err)
	}
	s.activity.Record("login", "users", user.ID, user.ID)
	return s.issue(ctx, user)
}

// Logout 用户登出
func (s *accountService) Logout(ctx context.Context, accessToken string) error {
	return s.tokenService.RevokeToken(ctx, accessToken)
}

// Me 获取当前用户
func (s *accountService) Me(ctx context.Context, userID string) (*model.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *accountService) issue(ctx context.Context, user *model.User) (*model.LoginResponse, error) {
	pair, err := s.tokenService.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{
		User:        user.ToResponse(),
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(pair.AccessTokenExpireIn.Seconds()),
	}, nil
}
