package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/email"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/tokenstore"
	"golang.org/x/crypto/bcrypt"
)

const employeeResetTokenType = "employee"

type AuthServiceImpl struct {
	adminRepo    auth.AdminRepository
	employeeRepo employee.EmployeeRepository
	jwtService   jwt.Service
	resetTokens  *tokenstore.Store
	emailService email.EmailService
	frontendURL  string
	bcryptCost   int
}

func NewAuthService(
	adminRepo auth.AdminRepository,
	employeeRepo employee.EmployeeRepository,
	jwtService jwt.Service,
	resetTokens *tokenstore.Store,
	emailService email.EmailService,
	frontendURL string,
) auth.AuthService {
	return &AuthServiceImpl{
		adminRepo:    adminRepo,
		employeeRepo: employeeRepo,
		jwtService:   jwtService,
		resetTokens:  resetTokens,
		emailService: emailService,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		bcryptCost:   bcrypt.DefaultCost,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AdminLogin implements auth.AuthService.
func (a *AuthServiceImpl) AdminLogin(ctx context.Context, req auth.AdminLoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	admin, err := a.adminRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrAdminNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get admin by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(admin.ID, admin.Email, auth.RoleAdmin, nil)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		Role:                 auth.RoleAdmin,
		Email:                admin.Email,
	}, nil
}

// EmployeeLogin implements auth.AuthService.
func (a *AuthServiceImpl) EmployeeLogin(ctx context.Context, req auth.EmployeeLoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	emp, err := a.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	if !strings.EqualFold(strings.TrimSpace(req.Email), emp.Email) {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if emp.PasswordHash == "" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	employeeID := emp.ID
	token, expiresAt, err := a.jwtService.GenerateAccessToken(fmt.Sprintf("%d", emp.ID), emp.Email, auth.RoleEmployee, &employeeID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		Role:                 auth.RoleEmployee,
		EmployeeID:           &employeeID,
		Name:                 emp.Name,
		Email:                emp.Email,
	}, nil
}

// ForgotPassword implements auth.AuthService.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	emp, err := a.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return err
		}
		return fmt.Errorf("failed to get employee: %w", err)
	}

	token, entry := a.resetTokens.Issue(emp.ID, emp.Email, employeeResetTokenType)
	link := a.resetLink(token)

	if err := a.emailService.SendPasswordReset(emp.Email, emp.Name, link, entry.ExpiresAt); err != nil {
		_, _ = a.resetTokens.Consume(token)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	slog.Info("Password reset issued", "employee_id", emp.ID, "expires_at", entry.ExpiresAt)
	return nil
}

// ResetPassword implements auth.AuthService.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	entry, err := a.resetTokens.Consume(req.Token)
	if err != nil {
		return auth.ErrInvalidToken
	}

	if entry.Type != employeeResetTokenType {
		a.resetTokens.Restore(req.Token, entry)
		return auth.ErrInvalidTokenType
	}

	hash, err := a.hashPassword(req.NewPassword)
	if err != nil {
		a.resetTokens.Restore(req.Token, entry)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.employeeRepo.UpdatePassword(ctx, entry.SubjectID, hash); err != nil {
		a.resetTokens.Restore(req.Token, entry)
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return err
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("Password reset completed", "employee_id", entry.SubjectID)
	return nil
}

// SeedAdmin implements auth.AuthService.
func (a *AuthServiceImpl) SeedAdmin(ctx context.Context, adminEmail, password string) error {
	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	if adminEmail == "" || password == "" {
		return nil
	}

	if _, err := a.adminRepo.GetByEmail(ctx, adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, auth.ErrAdminNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := a.hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin, err := a.adminRepo.Create(ctx, auth.Admin{Email: adminEmail, PasswordHash: hash})
	if err != nil {
		return err
	}

	slog.Info("Bootstrap admin ready", "admin_id", admin.ID, "email", admin.Email)
	return nil
}

func (a *AuthServiceImpl) resetLink(token string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("type", employeeResetTokenType)
	return a.frontendURL + "/?" + q.Encode()
}
