package jwt

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(subjectID string, email string, role auth.Role, employeeID *int64) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

// GenerateAccessToken signs an access token. employee_id is carried as a decimal string.
func (j *JWTService) GenerateAccessToken(subjectID string, email string, role auth.Role, employeeID *int64) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     subjectID,
		"email":       email,
		"employee_id": nil,
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
	}
	if employeeID != nil {
		claims["employee_id"] = strconv.FormatInt(*employeeID, 10)
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// EmployeeIDFromClaims extracts the numeric employee id of an employee token.
func EmployeeIDFromClaims(claims map[string]interface{}) (int64, bool) {
	raw, ok := claims["employee_id"].(string)
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
