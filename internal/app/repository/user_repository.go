package repository

import (
	"sync"

	"github.com/google/uuid"
	"github.com/magaru/shortly/internal/app/model"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Save(user *model.User)
	FindByID(id uuid.UUID) (*model.User, bool)
	Exists(id uuid.UUID) bool
	FindAll() []*model.User
	Count() int
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*model.User
}

// NewUserRepository returns an in-memory, concurrency-safe UserRepository.
func NewUserRepository() UserRepository {
	return &memoryUserRepository{
		users: make(map[uuid.UUID]*model.User),
	}
}

func (r *memoryUserRepository) Save(user *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *user
	r.users[user.ID] = &stored
}

func (r *memoryUserRepository) FindByID(id uuid.UUID) (*model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, false
	}
	cp := *user
	return &cp, true
}

func (r *memoryUserRepository) Exists(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[id]
	return ok
}

func (r *memoryUserRepository) FindAll() []*model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		cp := *user
		result = append(result, &cp)
	}
	return result
}

func (r *memoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}
