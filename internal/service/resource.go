package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

const (
	// DefaultPageSize 默认分页大小
	DefaultPageSize = 20
	// MaxPageSize 最大分页大小
	MaxPageSize = 100
)

// ResourceService 资源服务接口
type ResourceService[T any, P model.ResourcePtr[T]] interface {
	// Name 资源集合名称
	Name() string
	Create(ctx context.Context, ownerID string, body []byte) (P, error)
	Get(ctx context.Context, ownerID, id string) (P, error)
	// Patch 以 merge-patch 方式部分更新
	Patch(ctx context.Context, ownerID, id string, patch []byte) (P, error)
	Delete(ctx context.Context, ownerID, id string) error
	// List 分页列出资源，page 从 0 开始
	List(ctx context.Context, ownerID string, filters map[string]string, page, size int) ([]T, int64, error)
}

type resourceService[T any, P model.ResourcePtr[T]] struct {
	repo     repository.ResourceRepository[T, P]
	activity ActivityRecorder
	name     string
	filters  map[string]bool
}

// NewResourceService 创建资源服务实例
func NewResourceService[T any, P model.ResourcePtr[T]](repo repository.ResourceRepository[T, P], activity ActivityRecorder) ResourceService[T, P] {
	sample := P(new(T))
	filters := make(map[string]bool)
	for _, f := range sample.FilterFields() {
		filters[f] = true
	}
	return &resourceService[T, P]{
		repo:     repo,
		activity: recorderOrNoop(activity),
		name:     sample.ResourceName(),
		filters:  filters,
	}
}

func (s *resourceService[T, P]) Name() string {
	return s.name
}

// Create 创建资源
func (s *resourceService[T, P]) Create(ctx context.Context, ownerID string, body []byte) (P, error) {
	res := P(new(T))
	if err := json.Unmarshal(body, res); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidResource, err)
	}
	res.SetID("")
	res.SetOwner(ownerID)
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.name, err)
	}
	s.activity.Record("create", s.name, res.GetID(), ownerID)
	return res, nil
}

// Get 获取资源
func (s *resourceService[T, P]) Get(ctx context.Context, ownerID, id string) (P, error) {
	res, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", s.name, err)
	}
	if res == nil {
		return nil, ErrResourceNotFound
	}
	return res, nil
}

// Patch 部分更新资源
func (s *resourceService[T, P]) Patch(ctx context.Context, ownerID, id string, patch []byte) (P, error) {
	current, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	merged, err := applyMergePatch(doc, patch)
	if err != nil {
		return nil, err
	}

	updated := P(new(T))
	if err := json.Unmarshal(merged, updated); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidResource, err)
	}
	updated.SetID(current.GetID())
	updated.SetOwner(ownerID)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", s.name, err)
	}
	s.activity.Record("update", s.name, id, ownerID)
	return updated, nil
}

// Delete 删除资源
func (s *resourceService[T, P]) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.name, err)
	}
	if !deleted {
		return ErrResourceNotFound
	}
	s.activity.Record("delete", s.name, id, ownerID)
	return nil
}

// List 列出资源
func (s *resourceService[T, P]) List(ctx context.Context, ownerID string, filters map[string]string, page, size int) ([]T, int64, error) {
	for field := range filters {
		if !s.filters[field] {
			return nil, 0, fmt.Errorf("%w: %s", ErrInvalidFilter, field)
		}
	}
	page, size = NormalizePage(page, size)
	items, total, err := s.repo.List(ctx, ownerID, filters, page*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", s.name, err)
	}
	return items, total, nil
}

// NormalizePage 修正分页参数
func NormalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// IsInvalid 判断错误是否为请求内容问题
func IsInvalid(err error) bool {
	return errors.Is(err, model.ErrInvalidResource) || errors.Is(err, ErrInvalidPatch) || errors.Is(err, ErrInvalidFilter)
}
