package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type adminRepositoryImpl struct {
	db *database.DB
}

func NewAdminRepository(db *database.DB) auth.AdminRepository {
	return &adminRepositoryImpl{db: db}
}

// GetByEmail implements auth.AdminRepository.
func (a *adminRepositoryImpl) GetByEmail(ctx context.Context, email string) (auth.Admin, error) {
	q := GetQuerier(ctx, a.db)

	var admin auth.Admin
	err := q.QueryRow(ctx, `SELECT id, email, password_hash FROM admins WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email)).
		Scan(&admin.ID, &admin.Email, &admin.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Admin{}, auth.ErrAdminNotFound
		}
		return auth.Admin{}, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

// Create implements auth.AdminRepository. An existing admin with the same email is left untouched.
func (a *adminRepositoryImpl) Create(ctx context.Context, admin auth.Admin) (auth.Admin, error) {
	q := GetQuerier(ctx, a.db)

	err := q.QueryRow(ctx, `
		INSERT INTO admins (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, password_hash
	`, admin.Email, admin.PasswordHash).Scan(&admin.ID, &admin.Email, &admin.PasswordHash)
	if err != nil {
		return auth.Admin{}, fmt.Errorf("failed to create admin: %w", err)
	}
	return admin, nil
}
