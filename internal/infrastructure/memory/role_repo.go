package memory

import (
	"context"
	"sync"

	"github.com/baechuer/otp-auth-service/internal/domain"
)

type RoleRepo struct {
	mu    sync.RWMutex
	roles map[domain.Role]struct{}
}

func NewRoleRepo() *RoleRepo {
	return &RoleRepo{roles: make(map[domain.Role]struct{})}
}

func (r *RoleRepo) Exists(ctx context.Context, role domain.Role) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.roles[role]
	return ok, nil
}

// Ensure inserts the role if missing.
func (r *RoleRepo) Ensure(ctx context.Context, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role] = struct{}{}
	return nil
}
