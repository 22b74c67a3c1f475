package memory

import (
	"context"
	"sync"
	"time"

	"estate-crm-be/internal/entity"
	"estate-crm-be/internal/repository/contract"

	"github.com/google/uuid"
)

// UserRepository is a map-backed user store for tests.
type UserRepository struct {
	mu    sync.Mutex
	byId  map[uuid.UUID]*entity.User
	byEml map[string]uuid.UUID
}

func NewUserRepository() contract.UserRepository {
	return &UserRepository{
		byId:  make(map[uuid.UUID]*entity.User),
		byEml: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byId[user.Id] = &stored
	r.byEml[user.Email] = user.Id
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.UpdatedAt = time.Now()
	stored := *user
	r.byId[user.Id] = &stored
	r.byEml[user.Email] = user.Id
	return nil
}

func (r *UserRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byId[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEml[email]
	if !ok {
		return nil, nil
	}
	cp := *r.byId[id]
	return &cp, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byId)), nil
}
