package router

import (
	"net/http"

	v1 "taskflow/api/v1"
	"taskflow/pkg/middleware"
	"taskflow/pkg/version"

	"github.com/gin-gonic/gin"
)

// Registrar 可以在路由组上注册路由的处理器
type Registrar interface {
	Register(r *gin.RouterGroup)
}

// Router 路由管理器
type Router struct {
	engine          *gin.Engine
	authMiddleware  *middleware.AuthMiddleware
	authHandler     *v1.AuthHandler
	activityHandler *v1.ActivityHandler
	resources       []Registrar
	adminUsers      []string
}

// NewRouter 创建路由管理器实例
func NewRouter(
	engine *gin.Engine,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *v1.AuthHandler,
	activityHandler *v1.ActivityHandler,
	resources []Registrar,
	adminUsers []string,
) *Router {
	return &Router{
		engine:          engine,
		authMiddleware:  authMiddleware,
		authHandler:     authHandler,
		activityHandler: activityHandler,
		resources:       resources,
		adminUsers:      adminUsers,
	}
}

// RegisterRoutes 注册所有路由
func (r *Router) RegisterRoutes() {
	// 健康检查
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.GetVersion()})
	})

	// API v1
	api := r.engine.Group("/api/v1")
	{
		// 公开路由
		r.authHandler.Register(api)

		// 需要认证的路由，Cookie 认证的写请求需要 CSRF 校验
		authed := api.Group("")
		authed.Use(r.authMiddleware.HandleAuth(), middleware.CSRF())
		{
			r.authHandler.RegisterProtected(authed)
			for _, res := range r.resources {
				res.Register(authed)
			}

			admin := authed.Group("")
			admin.Use(middleware.RequireAdmin(r.adminUsers))
			r.activityHandler.Register(admin)
		}
	}
}

// Handler 返回带方法覆盖的 http.Handler
func (r *Router) Handler() http.Handler {
	return middleware.MethodOverride(r.engine)
}
