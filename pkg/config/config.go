package config

import (
	"fmt"
	"strings"
	"time"

	"taskflow/pkg/database"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	JWT      JWTConfig       `mapstructure:"jwt"`
	Activity ActivityConfig  `mapstructure:"activity"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         int
	Mode         string
	CookieSecure bool `mapstructure:"cookie_secure"` // Cookie 是否仅通过 HTTPS 发送
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret            string
	AccessTokenExpire int `mapstructure:"access_token_expire"` // 访问令牌有效期（秒）
}

// AccessTTL 访问令牌有效期
func (c JWTConfig) AccessTTL() time.Duration {
	if c.AccessTokenExpire <= 0 {
		return time.Hour
	}
	return time.Duration(c.AccessTokenExpire) * time.Second
}

// ActivityConfig 管理端实时动态配置
type ActivityConfig struct {
	AdminUsers []string        `mapstructure:"admin_users"` // 允许查看统计的用户名
	WebSocket  WebSocketConfig `mapstructure:"websocket"`   // WebSocket配置
}

// WebSocketConfig WebSocket配置
type WebSocketConfig struct {
	PingInterval   int `mapstructure:"ping_interval"`    // 心跳间隔(秒)
	WriteWait      int `mapstructure:"write_wait"`       // 写超时(秒)
	ReadWait       int `mapstructure:"read_wait"`        // 读超时(秒)
	MaxMessageSize int `mapstructure:"max_message_size"` // 最大消息大小(字节)
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml") // 设置配置文件类型

	// 环境变量覆盖，例如 TASKFLOW_JWT_SECRET 覆盖 jwt.secret
	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("jwt.access_token_expire", 3600)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return &config, nil
}
