package boot

import (
	"taskflow/internal/model"
	"taskflow/pkg/database"

	"gorm.io/gorm"
)

// InitDB 初始化 PostgreSQL 数据库连接
func InitDB(cfg *database.Config) (*gorm.DB, error) {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}

	// 自动迁移数据库表
	if err := db.AutoMigrate(
		&model.User{},
		&model.Workspace{},
		&model.Board{},
		&model.Card{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
