package boot

import (
	"time"

	"taskflow/internal/activity"
	"taskflow/internal/model"
	"taskflow/internal/service"
	"taskflow/pkg/config"
	"taskflow/pkg/redis"
)

// Services 包含所有服务实例
type Services struct {
	TokenService     service.TokenService
	AccountService   service.AccountService
	WorkspaceService service.ResourceService[model.Workspace, *model.Workspace]
	BoardService     service.ResourceService[model.Board, *model.Board]
	CardService      service.ResourceService[model.Card, *model.Card]
	ActivityHub      *activity.Hub
}

// InitServices 初始化所有服务实例，redisClient 为 nil 时令牌无法吊销、计数不持久化
func InitServices(cfg *config.Config, repos *Repositories, redisClient *redis.Client) *Services {
	var (
		revoked  service.RevocationStore
		counters activity.CounterStore
	)
	if redisClient != nil {
		revoked, counters = redisClient, redisClient
	}

	ws := cfg.Activity.WebSocket
	hub := activity.NewHub(&activity.Config{
		PingInterval:   time.Duration(ws.PingInterval) * time.Second,
		WriteWait:      time.Duration(ws.WriteWait) * time.Second,
		ReadWait:       time.Duration(ws.ReadWait) * time.Second,
		MaxMessageSize: int64(ws.MaxMessageSize),
	}, counters)

	tokenService := service.NewTokenService(revoked, cfg.JWT.Secret, cfg.JWT.AccessTTL())

	return &Services{
		TokenService:     tokenService,
		AccountService:   service.NewAccountService(repos.UserRepo, tokenService, hub),
		WorkspaceService: service.NewResourceService(repos.WorkspaceRepo, hub),
		BoardService:     service.NewResourceService(repos.BoardRepo, hub),
		CardService:      service.NewResourceService(repos.CardRepo, hub),
		ActivityHub:      hub,
	}
}
