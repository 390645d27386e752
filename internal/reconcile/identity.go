package reconcile

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnknownProvider 不支持的身份提供方
var ErrUnknownProvider = errors.New("unknown identity provider")

// Provider 外部身份提供方标识
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderGitHub   Provider = "github"
)

const maxUsernameLength = 20

var providerPrefixes = map[Provider]string{
	ProviderGoogle:   "gg",
	ProviderFacebook: "fb",
	ProviderGitHub:   "gh",
}

// 各提供方弹窗授权时请求的权限范围
var providerScopes = map[Provider][]string{
	ProviderGoogle:   {"openid", "email", "profile"},
	ProviderFacebook: {"email", "public_profile"},
	ProviderGitHub:   {"read:user", "user:email"},
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
)

// ExternalIdentity 身份提供方弹窗认证成功后返回的用户信息
type ExternalIdentity struct {
	ProviderUserID string `json:"provider_user_id"`
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
}

// LocalIdentity 由外部身份确定性推导出的后端账号信息
type LocalIdentity struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	// Password 直接使用 provider user id，保证同一外部身份每次登录都能成功
	Password string `json:"-"`
}

// ParseProvider 解析提供方名称，忽略大小写
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := providerPrefixes[p]; !ok {
		return "", ErrUnknownProvider
	}
	return p, nil
}

// Scopes 返回提供方的授权范围
func Scopes(p Provider) []string {
	return append([]string(nil), providerScopes[p]...)
}

// Prefix 返回用户名回退时使用的提供方前缀
func (p Provider) Prefix() string {
	if prefix, ok := providerPrefixes[p]; ok {
		return prefix
	}
	return sanitize(string(p))
}

// Derive 推导本地身份，同一输入总是得到相同输出
func Derive(p Provider, ext ExternalIdentity) LocalIdentity {
	email := strings.TrimSpace(ext.Email)
	validEmail := emailPattern.MatchString(email)
	if !validEmail {
		email = ext.ProviderUserID + "@" + string(p) + ".local"
	}

	username := sanitize(ext.DisplayName)
	if username == "" && validEmail {
		local, _, _ := strings.Cut(email, "@")
		username = sanitize(local)
	}
	if username == "" {
		id := ext.ProviderUserID
		if len(id) > 8 {
			id = id[:8]
		}
		username = p.Prefix() + "_" + id
	}

	return LocalIdentity{
		Email:    email,
		Username: username,
		Password: ext.ProviderUserID,
	}
}

// sanitize 小写化，非字母数字折叠为下划线，截断到20个字符
func sanitize(s string) string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "_")
	s = strings.Trim(s, "_")
	if len(s) > maxUsernameLength {
		s = strings.TrimRight(s[:maxUsernameLength], "_")
	}
	return s
}
