package main

import (
	"context"
	"fmt"

	"taskflow/internal/reconcile"
	"taskflow/pkg/client"
	"taskflow/pkg/config"
	"taskflow/pkg/logger"
	"taskflow/pkg/redis"
	"taskflow/pkg/session"
)

// app 一次命令执行所需的客户端组件
type app struct {
	cfg        *config.ClientConfig
	store      *session.Store
	client     *client.Client
	reconciler *reconcile.Reconciler
	closeFn    func() error
}

type opener func() (*app, error)

func newApp(baseURL string, verbose bool) (*app, error) {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if verbose {
		logger.SetLevel(logger.LevelDebug)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	backend, closeFn, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(backend)

	c, err := client.New(client.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Tokens:  store,
	})
	if err != nil {
		closeFn()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		store:  store,
		client: c,
		reconciler: reconcile.New(c, store, reconcile.Config{
			LoginPath:    cfg.LoginPath,
			RegisterPath: cfg.RegisterPath,
		}),
		closeFn: closeFn,
	}, nil
}

// openBackend 配置了 Redis 时使用共享会话，否则使用本地文件
func openBackend(cfg *config.ClientConfig) (session.Backend, func() error, error) {
	if cfg.RedisURL != "" {
		rc, err := redis.NewClientFromURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using redis session namespace %s", cfg.Namespace)
		return session.NewRedisBackend(rc.Client, cfg.Namespace), rc.Close, nil
	}

	path := cfg.SessionFile
	if path == "" {
		p, err := session.DefaultFilePath()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot locate session file: %w", err)
		}
		path = p
	}
	logger.Debug("using session file %s", path)
	return session.NewFileBackend(path), func() error { return nil }, nil
}

func (a *app) Close() error {
	return a.closeFn()
}

// requireSession 未登录时返回错误
func (a *app) requireSession(ctx context.Context) error {
	cred, err := a.store.Credential(ctx)
	if err != nil {
		return err
	}
	if !cred.Established {
		return fmt.Errorf("not signed in, run `taskflow login` first")
	}
	return nil
}
