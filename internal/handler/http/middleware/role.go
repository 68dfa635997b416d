package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-portal/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type employeeIDKey struct{}

// RequireAdmin requires the admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrForbidden)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != string(auth.RoleAdmin) {
			response.HandleError(w, auth.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireEmployee requires the employee role and stores the token's employee id in the context.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrForbidden)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != string(auth.RoleEmployee) {
			response.HandleError(w, auth.ErrForbidden)
			return
		}

		employeeID, ok := jwt.EmployeeIDFromClaims(claims)
		if !ok {
			response.Unauthorized(w, "Token does not identify an employee")
			return
		}

		ctx := context.WithValue(r.Context(), employeeIDKey{}, employeeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// EmployeeIDFromContext returns the id stored by RequireEmployee.
func EmployeeIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(employeeIDKey{}).(int64)
	return id, ok
}
