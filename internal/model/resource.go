package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidResource 资源字段校验失败
var ErrInvalidResource = errors.New("invalid resource")

// Resource 可通过 HAL 接口增删改查的资源
type Resource interface {
	// ResourceName 集合名称，同时用作路由和 _embedded 的键
	ResourceName() string
	GetID() string
	SetID(id string)
	SetOwner(userID string)
	// Validate 校验必填字段
	Validate() error
	// FilterFields 列表接口允许的查询过滤字段
	FilterFields() []string
}

// ResourcePtr 约束资源的指针类型
type ResourcePtr[T any] interface {
	*T
	Resource
}

// Workspace 工作区
type Workspace struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID     string    `json:"owner_id" gorm:"type:uuid;index"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Board 看板
type Board struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID     string    `json:"owner_id" gorm:"type:uuid;index"`
	WorkspaceID string    `json:"workspace_id" gorm:"type:uuid;index"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CardStatus 卡片状态
type CardStatus string

const (
	CardTodo  CardStatus = "todo"
	CardDoing CardStatus = "doing"
	CardDone  CardStatus = "done"
)

// Card 任务卡片
type Card struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	OwnerID     string     `json:"owner_id" gorm:"type:uuid;index"`
	BoardID     string     `json:"board_id" gorm:"type:uuid;index"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	Status      CardStatus `json:"status" gorm:"type:varchar(20);default:todo"`
	Position    int        `json:"position"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (w *Workspace) ResourceName() string { return "workspaces" }
func (w *Workspace) GetID() string { return w.ID }
func (w *Workspace) SetID(id string) { w.ID = id }
func (w *Workspace) SetOwner(userID string) { w.OwnerID = userID }
func (w *Workspace) FilterFields() []string { return nil }
func (w *Workspace) BeforeCreate(*gorm.DB) error { return assignID(w) }

// Validate 校验工作区
func (w *Workspace) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidResource)
	}
	return nil
}

func (b *Board) ResourceName() string { return "boards" }
func (b *Board) GetID() string { return b.ID }
func (b *Board) SetID(id string) { b.ID = id }
func (b *Board) SetOwner(userID string) { b.OwnerID = userID }
func (b *Board) FilterFields() []string { return []string{"workspace_id"} }
func (b *Board) BeforeCreate(*gorm.DB) error { return assignID(b) }

// Validate 校验看板
func (b *Board) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidResource)
	}
	if b.WorkspaceID == "" {
		return fmt.Errorf("%w: workspace_id is required", ErrInvalidResource)
	}
	return nil
}

func (c *Card) ResourceName() string { return "cards" }
func (c *Card) GetID() string { return c.ID }
func (c *Card) SetID(id string) { c.ID = id }
func (c *Card) SetOwner(userID string) { c.OwnerID = userID }
func (c *Card) FilterFields() []string { return []string{"board_id", "status"} }
func (c *Card) BeforeCreate(*gorm.DB) error { return assignID(c) }

// Validate 校验卡片，状态为空时默认 todo
func (c *Card) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidResource)
	}
	if c.BoardID == "" {
		return fmt.Errorf("%w: board_id is required", ErrInvalidResource)
	}
	switch c.Status {
	case "":
		c.Status = CardTodo
	case CardTodo, CardDoing, CardDone:
	default:
		return fmt.Errorf("%w: status must be todo, doing or done", ErrInvalidResource)
	}
	return nil
}

func assignID(r Resource) error {
	if r.GetID() == "" {
		r.SetID(uuid.New().String())
	}
	return nil
}
