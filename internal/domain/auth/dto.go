package auth

import "github.com/cmlabs-hris/workforce-portal/internal/pkg/validator"

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *AdminLoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EmployeeLoginRequest identifies the employee by id and email together.
type EmployeeLoginRequest struct {
	EmployeeID int64  `json:"employee_id"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (r *EmployeeLoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a positive integer",
		})
	}
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ForgotPasswordRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

func (r *ForgotPasswordRequest) Validate() error {
	if r.EmployeeID <= 0 {
		return validator.ValidationErrors{{
			Field:   "employee_id",
			Message: "employee_id must be a positive integer",
		}}
	}
	return nil
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Token) {
		errs = append(errs, validator.ValidationError{
			Field:   "token",
			Message: "token is required",
		})
	}
	if len(r.NewPassword) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "new_password",
			Message: "new_password must be at least 8 characters long",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
	Role                 Role   `json:"role"`
	EmployeeID           *int64 `json:"employee_id,omitempty"`
	Name                 string `json:"name,omitempty"`
	Email                string `json:"email"`
}
