package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStatus 用户状态
type UserStatus int

const (
	UserStatusDisabled UserStatus = iota // 禁用
	UserStatusEnabled                    // 启用
)

// User 用户模型
type User struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	Username    string     `json:"username" gorm:"type:varchar(50);uniqueIndex"`
	Email       string     `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	Password    string     `json:"-" gorm:"type:varchar(100)"`
	DisplayName string     `json:"display_name" gorm:"type:varchar(100)"`
	Status      UserStatus `json:"status" gorm:"type:int;default:1"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate GORM的钩子，在创建记录前生成UUID并加密密码
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return u.HashPassword()
}

// HashPassword 加密明文密码，已加密的密码保持不变
func (u *User) HashPassword() error {
	if u.Password == "" || strings.HasPrefix(u.Password, "$2") {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ValidatePassword 验证密码
func (u *User) ValidatePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// ToResponse 转换为响应结构
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
