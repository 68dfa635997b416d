package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
)

type AdminRepository struct {
	mu     sync.Mutex
	admins map[string]auth.Admin
	seq    int
}

func NewAdminRepository() *AdminRepository {
	return &AdminRepository{admins: make(map[string]auth.Admin)}
}

var _ auth.AdminRepository = (*AdminRepository)(nil)

// GetByEmail implements auth.AdminRepository.
func (m *AdminRepository) GetByEmail(ctx context.Context, email string) (auth.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.admins[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return auth.Admin{}, auth.ErrAdminNotFound
	}
	return a, nil
}

// Create implements auth.AdminRepository. An existing admin with the same email is returned unchanged.
func (m *AdminRepository) Create(ctx context.Context, admin auth.Admin) (auth.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(admin.Email)
	if existing, ok := m.admins[key]; ok {
		return existing, nil
	}

	m.seq++
	admin.ID = fmt.Sprintf("admin-%d", m.seq)
	m.admins[key] = admin
	return admin, nil
}
