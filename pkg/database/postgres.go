package database

import (
	"fmt"

	"taskflow/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config 数据库配置
type Config struct {
	Driver   string // postgres（默认）或 memory
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool // 是否输出 SQL 日志
}

// DriverMemory 使用内存仓储，不连接数据库
const DriverMemory = "memory"

// IsMemory 是否使用内存仓储
func (c *Config) IsMemory() bool {
	return c.Driver == DriverMemory
}

// DSN 返回 PostgreSQL 连接串
func (c *Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, sslMode)
}

// NewPostgresDB 创建一个新的PostgreSQL连接
func NewPostgresDB(config *Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if config.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		// 唯一索引冲突统一翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		logger.Error("Failed to connect to database: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层的sqlDB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}
