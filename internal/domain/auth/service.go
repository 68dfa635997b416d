package auth

import (
	"context"
)

type AuthService interface {
	AdminLogin(ctx context.Context, req AdminLoginRequest) (TokenResponse, error)
	EmployeeLogin(ctx context.Context, req EmployeeLoginRequest) (TokenResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error

	// SeedAdmin creates the bootstrap admin if no admin with that email exists.
	SeedAdmin(ctx context.Context, email, password string) error
}
