package repository

import (
	"context"
	"errors"

	"taskflow/internal/model"

	"gorm.io/gorm"
)

// ResourceRepository 资源仓储接口，所有查询都限定在资源所有者范围内
type ResourceRepository[T any, P model.ResourcePtr[T]] interface {
	Create(ctx context.Context, res P) error
	GetByID(ctx context.Context, ownerID, id string) (P, error)
	Update(ctx context.Context, res P) error
	Delete(ctx context.Context, ownerID, id string) (bool, error)
	List(ctx context.Context, ownerID string, filters map[string]string, offset, limit int) ([]T, int64, error)
	Count(ctx context.Context) (int64, error)
}

type resourceRepository[T any, P model.ResourcePtr[T]] struct {
	db *gorm.DB
}

// NewResourceRepository 创建资源仓储实例
func NewResourceRepository[T any, P model.ResourcePtr[T]](db *gorm.DB) ResourceRepository[T, P] {
	return &resourceRepository[T, P]{db: db}
}

func (r *resourceRepository[T, P]) Create(ctx context.Context, res P) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// GetByID 未找到时返回 nil, nil
func (r *resourceRepository[T, P]) GetByID(ctx context.Context, ownerID, id string) (P, error) {
	var res T
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepository[T, P]) Update(ctx context.Context, res P) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// Delete 返回是否删除了记录
func (r *resourceRepository[T, P]) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(P(new(T)))
	return result.RowsAffected > 0, result.Error
}

// List 分页查询，filters 的键必须来自资源的 FilterFields
func (r *resourceRepository[T, P]) List(ctx context.Context, ownerID string, filters map[string]string, offset, limit int) ([]T, int64, error) {
	var items []T
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("owner_id = ?", ownerID)
		for field, value := range filters {
			db = db.Where(field+" = ?", value)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(P(new(T))).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).Scopes(scope).Order("created_at").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *resourceRepository[T, P]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(P(new(T))).Count(&count).Error
	return count, err
}
