package model

import "time"

// TokenType 令牌类型
type TokenType string

const (
	AccessToken TokenType = "access"
)

// TokenClaims JWT令牌的声明
type TokenClaims struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Type      TokenType `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetExpiresAt 获取过期时间
func (tc *TokenClaims) GetExpiresAt() time.Time {
	return tc.ExpiresAt
}

// TokenPair 签发的令牌
type TokenPair struct {
	AccessToken         string        `json:"access_token"`
	AccessTokenExpireIn time.Duration `json:"access_token_expire_in"`
}
