package model

// UserResponse 用户响应
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name,omitempty"`
	Status      UserStatus `json:"status"`
	CreatedAt   string     `json:"created_at"`
}

// LoginRequest 登录请求，email 和 username 任填其一
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// Identifier 返回用于查找账号的标识
func (r *LoginRequest) Identifier() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// RegisterRequest 注册请求，确认密码兼容多种字段名
type RegisterRequest struct {
	Email                string `json:"email" binding:"required"`
	Username             string `json:"username" binding:"required"`
	Password             string `json:"password" binding:"required"`
	DisplayName          string `json:"display_name"`
	ConfirmedPassword    string `json:"confirmedPassword"`
	ConfirmedPasswordAlt string `json:"confirmed_password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Confirmation 返回第一个非空的确认密码
func (r *RegisterRequest) Confirmation() string {
	for _, v := range []string{r.ConfirmedPassword, r.ConfirmedPasswordAlt, r.PasswordConfirmation} {
		if v != "" {
			return v
		}
	}
	return ""
}
