package service

import "errors"

var (
	// ErrInvalidCredentials 无效的凭证
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists 邮箱或用户名已被占用
	ErrUserExists = errors.New("user already exists")
	// ErrPasswordMismatch 确认密码与密码不一致
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrUserDisabled 用户已被禁用
	ErrUserDisabled = errors.New("user is disabled")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidEmail 邮箱格式错误
	ErrInvalidEmail = errors.New("invalid email")

	// ErrResourceNotFound 资源不存在
	ErrResourceNotFound = errors.New("resource not found")
	// ErrInvalidPatch 无效的合并补丁
	ErrInvalidPatch = errors.New("invalid merge patch")
	// ErrInvalidFilter 不支持的过滤字段
	ErrInvalidFilter = errors.New("unsupported filter")
)
