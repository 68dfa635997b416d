package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-portal/internal/handler/http/response"
)

type AuthHandler interface {
	AdminLogin(w http.ResponseWriter, r *http.Request)
	EmployeeLogin(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &authHandlerImpl{
		authService: authService,
	}
}

// AdminLogin implements AuthHandler.
func (a *authHandlerImpl) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.AdminLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AdminLogin decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.AdminLogin(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", tokenResponse)
}

// EmployeeLogin implements AuthHandler.
func (a *authHandlerImpl) EmployeeLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.EmployeeLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("EmployeeLogin decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.EmployeeLogin(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", tokenResponse)
}

// ForgotPassword implements AuthHandler.
func (a *authHandlerImpl) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ForgotPassword decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := a.authService.ForgotPassword(r.Context(), req); err != nil {
		slog.Error("ForgotPassword service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reset link sent successfully", nil)
}

// ResetPassword implements AuthHandler.
func (a *authHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ResetPassword decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := a.authService.ResetPassword(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password reset successful", nil)
}
