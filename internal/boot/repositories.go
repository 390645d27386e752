package boot

import (
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"gorm.io/gorm"
)

// Repositories 包含所有仓储实例
type Repositories struct {
	UserRepo      repository.UserRepository
	WorkspaceRepo repository.ResourceRepository[model.Workspace, *model.Workspace]
	BoardRepo     repository.ResourceRepository[model.Board, *model.Board]
	CardRepo      repository.ResourceRepository[model.Card, *model.Card]
}

// InitRepositories 初始化所有仓储实例
func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		UserRepo:      repository.NewUserRepository(db),
		WorkspaceRepo: repository.NewResourceRepository[model.Workspace](db),
		BoardRepo:     repository.NewResourceRepository[model.Board](db),
		CardRepo:      repository.NewResourceRepository[model.Card](db),
	}
}

// InitMemoryRepositories 初始化内存仓储，数据随进程退出丢失
func InitMemoryRepositories() *Repositories {
	return &Repositories{
		UserRepo:      repository.NewMemoryUserRepository(),
		WorkspaceRepo: repository.NewMemoryResourceRepository[model.Workspace](),
		BoardRepo:     repository.NewMemoryResourceRepository[model.Board](),
		CardRepo:      repository.NewMemoryResourceRepository[model.Card](),
	}
}
