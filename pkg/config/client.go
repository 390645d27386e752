package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ClientConfig 命令行客户端配置，全部来自环境变量
type ClientConfig struct {
	BaseURL      string        `env:"TASKFLOW_API_BASE_URL"`
	LoginPath    string        `env:"TASKFLOW_LOGIN_PATH" envDefault:"/login"`
	RegisterPath string        `env:"TASKFLOW_REGISTER_PATH" envDefault:"/register"`
	Timeout      time.Duration `env:"TASKFLOW_TIMEOUT" envDefault:"20s"`
	// RedisURL 非空时会话保存在 Redis 中，多个进程共享
	RedisURL  string `env:"TASKFLOW_REDIS_URL"`
	Namespace string `env:"TASKFLOW_SESSION_NAMESPACE" envDefault:"default"`
	// SessionFile 为空时使用用户配置目录
	SessionFile string `env:"TASKFLOW_SESSION_FILE"`
	LogLevel    string `env:"TASKFLOW_LOG_LEVEL" envDefault:"warn"`
}

// LoadClientConfig 从环境变量读取客户端配置
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}
	return &cfg, nil
}
