package v1

import (
	"errors"
	"net/http"

	"taskflow/internal/model"
	"taskflow/internal/service"
	"taskflow/pkg/api"
	"taskflow/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	accountService service.AccountService
	cookieSecure   bool
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(accountService service.AccountService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		cookieSecure:   cookieSecure,
	}
}

// Register 注册公开路由
func (h *AuthHandler) Register(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
	r.POST("/register", h.SignUp)
}

// RegisterProtected 注册需要认证的路由
func (h *AuthHandler) RegisterProtected(r *gin.RouterGroup) {
	r.POST("/logout", h.Logout)
	r.GET("/me", h.Me)
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.accountService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			api.Error(c, http.StatusUnauthorized, "invalid username or password", nil)
		case errors.Is(err, service.ErrUserDisabled):
			api.Error(c, http.StatusForbidden, "user is disabled", nil)
		default:
			api.Error(c, http.StatusInternalServerError, "login failed", err)
		}
		return
	}

	h.setSessionCookies(c, resp)
	c.JSON(http.StatusOK, resp)
}

// SignUp 用户注册
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.accountService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserExists):
			api.Error(c, http.StatusConflict, "email or username already registered", nil)
		case errors.Is(err, service.ErrPasswordMismatch):
			api.Error(c, http.StatusUnprocessableEntity, "password confirmation does not match", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			api.Error(c, http.StatusBadRequest, "invalid email address", nil)
		default:
			api.Error(c, http.StatusInternalServerError, "registration failed", err)
		}
		return
	}

	h.setSessionCookies(c, resp)
	c.JSON(http.StatusCreated, resp)
}

// Logout 用户登出
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextKeyToken)
	if err := h.accountService.Logout(c.Request.Context(), token); err != nil {
		api.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	// 清除Cookie
	c.SetCookie(middleware.CookieAccessToken, "", -1, "/", "", h.cookieSecure, true)
	c.SetCookie(middleware.CSRFCookieName, "", -1, "/", "", h.cookieSecure, false)
	c.Status(http.StatusNoContent)
}

// Me 获取当前用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.MustGetUserFromContext(c)

	user, err := h.accountService.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			api.Error(c, http.StatusNotFound, "user not found", nil)
			return
		}
		api.Error(c, http.StatusInternalServerError, "failed to get user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// setSessionCookies 设置 HttpOnly 访问令牌 Cookie 和 CSRF Cookie
func (h *AuthHandler) setSessionCookies(c *gin.Context, resp *model.LoginResponse) {
	maxAge := int(resp.ExpiresIn)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieAccessToken, resp.AccessToken, maxAge, "/", "", h.cookieSecure, true)
	middleware.IssueCSRFCookie(c, maxAge, h.cookieSecure)
}
