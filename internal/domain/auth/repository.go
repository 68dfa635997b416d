package auth

import "context"

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (Admin, error)
	Create(ctx context.Context, admin Admin) (Admin, error)
}
