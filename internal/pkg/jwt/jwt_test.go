package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "15m")

	employeeID := int64(42)
	tokenString, expiresAt, err := svc.GenerateAccessToken("42", "jane@example.com", auth.RoleEmployee, &employeeID)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.Greater(t, expiresAt, int64(0))

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "employee", claims["role"])
	assert.Equal(t, "access", claims["type"])

	id, ok := EmployeeIDFromClaims(claims)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestGenerateAccessToken_Admin(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	tokenString, _, err := svc.GenerateAccessToken("admin-1", "admin@example.com", auth.RoleAdmin, nil)
	require.NoError(t, err)

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)

	_, ok := EmployeeIDFromClaims(claims)
	assert.False(t, ok)
	assert.Equal(t, "admin", claims["role"])
}

func TestGenerateAccessToken_BadDuration(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")

	_, _, err := svc.GenerateAccessToken("1", "a@example.com", auth.RoleAdmin, nil)
	assert.Error(t, err)
}

func TestEmployeeIDFromClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
		want   int64
		ok     bool
	}{
		{"valid", map[string]interface{}{"employee_id": "7"}, 7, true},
		{"missing", map[string]interface{}{}, 0, false},
		{"nil", map[string]interface{}{"employee_id": nil}, 0, false},
		{"not a number", map[string]interface{}{"employee_id": "abc"}, 0, false},
		{"zero", map[string]interface{}{"employee_id": "0"}, 0, false},
		{"float claim", map[string]interface{}{"employee_id": float64(7)}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EmployeeIDFromClaims(tt.claims)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
