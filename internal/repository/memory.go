package repository

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// memoryUserRepository 内存用户仓储，用于本地演示和测试
type memoryUserRepository struct {
	mu    sync.RWMutex
	users []*model.User
}

// NewMemoryUserRepository 创建内存用户仓储
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := user.HashPassword(); err != nil {
		return err
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	r.users = append(r.users, &stored)
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id }), nil
}

func (r *memoryUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == identifier || u.Username == identifier }), nil
}

func (r *memoryUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	u := r.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) || u.Username == username })
	return u != nil, nil
}

func (r *memoryUserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *memoryUserRepository) UpdateLastLogin(ctx context.Context, userID string, lastLoginTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			t := lastLoginTime
			u.LastLoginAt = &t
		}
	}
	return nil
}

// find 返回匹配用户的副本
func (r *memoryUserRepository) find(match func(*model.User) bool) *model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			found := *u
			return &found
		}
	}
	return nil
}

// memoryResourceRepository 内存资源仓储，按插入顺序返回
type memoryResourceRepository[T any, P model.ResourcePtr[T]] struct {
	mu    sync.RWMutex
	items []T
}

// NewMemoryResourceRepository 创建内存资源仓储
func NewMemoryResourceRepository[T any, P model.ResourcePtr[T]]() ResourceRepository[T, P] {
	return &memoryResourceRepository[T, P]{}
}

func (r *memoryResourceRepository[T, P]) Create(ctx context.Context, res P) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.GetID() == "" {
		res.SetID(uuid.New().String())
	}
	r.items = append(r.items, *res)
	return nil
}

func (r *memoryResourceRepository[T, P]) GetByID(ctx context.Context, ownerID, id string) (P, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(ownerID, id); i >= 0 {
		found := r.items[i]
		return &found, nil
	}
	return nil, nil
}

func (r *memoryResourceRepository[T, P]) Update(ctx context.Context, res P) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if P(&r.items[i]).GetID() == res.GetID() {
			r.items[i] = *res
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryResourceRepository[T, P]) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(ownerID, id)
	if i < 0 {
		return false, nil
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return true, nil
}

func (r *memoryResourceRepository[T, P]) List(ctx context.Context, ownerID string, filters map[string]string, offset, limit int) ([]T, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []T
	for i := range r.items {
		doc, err := json.Marshal(P(&r.items[i]))
		if err != nil {
			return nil, 0, err
		}
		if !matches(doc, ownerID, filters) {
			continue
		}
		matched = append(matched, r.items[i])
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []T{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memoryResourceRepository[T, P]) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

// index 调用方需持有锁
func (r *memoryResourceRepository[T, P]) index(ownerID, id string) int {
	for i := range r.items {
		doc, _ := json.Marshal(P(&r.items[i]))
		if P(&r.items[i]).GetID() == id && gjson.GetBytes(doc, "owner_id").String() == ownerID {
			return i
		}
	}
	return -1
}

func matches(doc []byte, ownerID string, filters map[string]string) bool {
	if gjson.GetBytes(doc, "owner_id").String() != ownerID {
		return false
	}
	for field, want := range filters {
		if gjson.GetBytes(doc, field).String() != want {
			return false
		}
	}
	return true
}
