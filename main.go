package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskflow/internal/boot"
	"taskflow/pkg/banner"
	"taskflow/pkg/logger"
	"taskflow/pkg/redis"

	"github.com/gin-gonic/gin"
)

// checkFatalErr 用于统一处理错误检查并中断流程。
func checkFatalErr(err error, message string) {
	if err != nil {
		logger.Fatal("%s: %v", message, err)
	}
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 加载配置文件（Configuration）
	cfg, err := boot.InitConfig(*configPath)
	checkFatalErr(err, "Failed to load config")

	// 根据配置设置 Gin 的运行模式（Gin Mode）
	gin.SetMode(cfg.Server.Mode)
	if cfg.Server.Mode == gin.DebugMode {
		logger.SetLevel(logger.LevelDebug)
	}

	// 初始化仓储层（Repositories）
	var repos *boot.Repositories
	if cfg.Database.IsMemory() {
		logger.Warn("Using in-memory storage, data is lost on restart")
		repos = boot.InitMemoryRepositories()
	} else {
		db, err := boot.InitDB(&cfg.Database)
		checkFatalErr(err, "Failed to connect to database")

		sqlDB, err := db.DB()
		checkFatalErr(err, "Failed to get underlying *sql.DB")
		defer sqlDB.Close()

		repos = boot.InitRepositories(db)
	}

	// 初始化 Redis 客户端（Redis）
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = redis.NewClient(&redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		checkFatalErr(err, "Failed to connect to Redis")
		defer redisClient.Close()
	} else {
		logger.Warn("Redis is not configured, logout cannot revoke tokens")
	}

	// 初始化服务层（Services）
	services := boot.InitServices(cfg, repos, redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 启动实时动态分发（Activity Hub），先载入 Redis 中的历史计数
	if err := services.ActivityHub.Restore(ctx); err != nil {
		logger.Warn("%v", err)
	}
	go services.ActivityHub.Run(ctx)

	// 初始化 Gin 引擎和路由（Router）
	handlers := boot.InitHandlers(services, repos, cfg)
	engine := gin.Default()
	r := boot.InitRouter(engine, handlers, services, cfg)

	// 统计相关系统状态信息（System Status）
	totals := make(map[string]int64)
	for name, count := range boot.Totals(repos) {
		if n, err := count(ctx); err == nil {
			totals[name] = n
		}
	}
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	banner.Print(os.Stdout, banner.SystemStatus{
		Addr:           addr,
		RedisStatus:    redisClient != nil,
		PostgresStatus: !cfg.Database.IsMemory(),
		Totals:         totals,
		AdminUsers:     cfg.Activity.AdminUsers,
	})

	// 启动服务器（Server）
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed: %v", err)
		}
	}()

	logger.Info("Starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server: %v", err)
	}
	logger.Info("Server stopped")
}
