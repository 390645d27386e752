package boot

import (
	v1 "taskflow/api/v1"
	"taskflow/internal/model"
	"taskflow/pkg/config"
	"taskflow/pkg/middleware"
	"taskflow/pkg/router"

	"github.com/gin-gonic/gin"
)

// Handlers 包含所有HTTP处理器
type Handlers struct {
	AuthHandler      *v1.AuthHandler
	WorkspaceHandler *v1.ResourceHandler[model.Workspace, *model.Workspace]
	BoardHandler     *v1.ResourceHandler[model.Board, *model.Board]
	CardHandler      *v1.ResourceHandler[model.Card, *model.Card]
	ActivityHandler  *v1.ActivityHandler
}

// InitHandlers 初始化所有HTTP处理器
func InitHandlers(services *Services, repos *Repositories, cfg *config.Config) *Handlers {
	return &Handlers{
		AuthHandler:      v1.NewAuthHandler(services.AccountService, cfg.Server.CookieSecure),
		WorkspaceHandler: v1.NewResourceHandler(services.WorkspaceService),
		BoardHandler:     v1.NewResourceHandler(services.BoardService),
		CardHandler:      v1.NewResourceHandler(services.CardService),
		ActivityHandler:  v1.NewActivityHandler(services.ActivityHub, Totals(repos)),
	}
}

// Totals 各集合的计数函数
func Totals(repos *Repositories) map[string]v1.CountFunc {
	return map[string]v1.CountFunc{
		"users":      repos.UserRepo.Count,
		"workspaces": repos.WorkspaceRepo.Count,
		"boards":     repos.BoardRepo.Count,
		"cards":      repos.CardRepo.Count,
	}
}

// InitRouter 初始化路由
func InitRouter(engine *gin.Engine, handlers *Handlers, services *Services, cfg *config.Config) *router.Router {
	authMiddleware := middleware.NewAuthMiddleware(services.TokenService)

	r := router.NewRouter(
		engine,
		authMiddleware,
		handlers.AuthHandler,
		handlers.ActivityHandler,
		[]router.Registrar{
			handlers.WorkspaceHandler,
			handlers.BoardHandler,
			handlers.CardHandler,
		},
		cfg.Activity.AdminUsers,
	)
	r.RegisterRoutes()
	return r
}
