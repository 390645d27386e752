package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskflow/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// RevocationStore 保存已吊销令牌的存储，由 pkg/redis.Client 实现
type RevocationStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TokenService Token服务接口
type TokenService interface {
	// GenerateToken 为用户签发访问令牌
	GenerateToken(ctx context.Context, user *model.User) (*model.TokenPair, error)

	// ValidateToken 验证令牌
	ValidateToken(ctx context.Context, tokenString string) (*model.TokenClaims, error)

	// RevokeToken 吊销令牌，直到其自然过期
	RevokeToken(ctx context.Context, tokenString string) error
}

// tokenService Token服务实现
type tokenService struct {
	revoked      RevocationStore
	jwtSecret    []byte
	accessExpiry time.Duration
	now          func() time.Time
}

// NewTokenService 创建Token服务实例
func NewTokenService(revoked RevocationStore, jwtSecret string, accessExpiry time.Duration) TokenService {
	return &tokenService{
		revoked:      revoked,
		jwtSecret:    []byte(jwtSecret),
		accessExpiry: accessExpiry,
		now:          time.Now,
	}
}

func revokedKey(token string) string {
	return fmt.Sprintf("revoked_token:%s", token)
}

// GenerateToken 生成JWT令牌
func (s *tokenService) GenerateToken(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	now := s.now()
	expiresAt := now.Add(s.accessExpiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"user_id":  user.ID,
		"username": user.Username,
		"type":     model.AccessToken,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:         signed,
		AccessTokenExpireIn: s.accessExpiry,
	}, nil
}

// ValidateToken 验证令牌
func (s *tokenService) ValidateToken(ctx context.Context, tokenString string) (*model.TokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// 检查令牌类型
	if typ, _ := claims["type"].(string); typ != string(model.AccessToken) {
		return nil, ErrInvalidToken
	}

	// 检查是否已被吊销
	if s.revoked != nil {
		revoked, err := s.revoked.Exists(ctx, revokedKey(tokenString))
		if err != nil {
			return nil, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	username, _ := claims["username"].(string)

	return &model.TokenClaims{
		UserID:    userID,
		Username:  username,
		Type:      model.AccessToken,
		ExpiresAt: exp.Time,
	}, nil
}

// RevokeToken 吊销令牌
func (s *tokenService) RevokeToken(ctx context.Context, tokenString string) error {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		// 已过期或已吊销的令牌无需再次处理
		if errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenRevoked) {
			return nil
		}
		return err
	}
	if s.revoked == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, revokedKey(tokenString), "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
