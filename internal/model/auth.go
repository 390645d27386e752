package model

// LoginResponse 登录/注册成功的响应
type LoginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"` // 访问令牌过期时间（秒）
}
