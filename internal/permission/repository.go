package permission

import (
	"context"
	"sync"
)

// Repository stores roles. Implementations return copies; callers never share
// a Matrix with the store.
type Repository interface {
	List(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id uint64) (Role, error)
	Create(ctx context.Context, role Role) error
	Update(ctx context.Context, role Role) error
	Delete(ctx context.Context, id uint64) error
}

// MemoryRepository keeps roles in insertion order for the lifetime of the process.
type MemoryRepository struct {
	mu    sync.RWMutex
	roles []Role
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// List implements Repository.
func (r *MemoryRepository) List(_ context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role.Clone())
	}

	return out, nil
}

// Get implements Repository.
func (r *MemoryRepository) Get(_ context.Context, id uint64) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.index(id)
	if idx < 0 {
		return Role{}, ErrRoleNotFound
	}

	return r.roles[idx].Clone(), nil
}

// Create implements Repository.
func (r *MemoryRepository) Create(_ context.Context, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roles = append(r.roles, role.Clone())

	return nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(_ context.Context, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(role.ID)
	if idx < 0 {
		return ErrRoleNotFound
	}

	r.roles[idx] = role.Clone()

	return nil
}

// Delete implements Repository.
func (r *MemoryRepository) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(id)
	if idx < 0 {
		return ErrRoleNotFound
	}

	r.roles = append(r.roles[:idx], r.roles[idx+1:]...)

	return nil
}

func (r *MemoryRepository) index(id uint64) int {
	for i := range r.roles {
		if r.roles[i].ID == id {
			return i
		}
	}

	return -1
}
