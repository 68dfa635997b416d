package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-portal/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-portal/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-portal/internal/pkg/tokenstore"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret    = "test-secret-key-for-jwt"
	testAccessExp = "1h"
	testPassword  = "password123"
)

type stubAdminRepo struct {
	mu     sync.Mutex
	admins map[string]auth.Admin
}

func (r *stubAdminRepo) GetByEmail(ctx context.Context, email string) (auth.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[strings.ToLower(email)]
	if !ok {
		return auth.Admin{}, auth.ErrAdminNotFound
	}
	return a, nil
}

func (r *stubAdminRepo) Create(ctx context.Context, a auth.Admin) (auth.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.admins[a.Email]; ok {
		return existing, nil
	}
	a.ID = "admin-" + a.Email
	r.admins[a.Email] = a
	return a, nil
}

type stubEmployeeRepo struct {
	employee.EmployeeRepository

	mu        sync.Mutex
	employees map[int64]employee.Employee
	updateErr error
}

func (r *stubEmployeeRepo) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *stubEmployeeRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	e, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.PasswordHash = hash
	r.employees[id] = e
	return nil
}

type sentMail struct {
	to, name, link string
	expiresAt      time.Time
}

type stubMailer struct {
	sent []sentMail
	err  error
}

func (m *stubMailer) SendPasswordReset(to, name, resetLink string, expiresAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, link: resetLink, expiresAt: expiresAt})
	return nil
}

type fixture struct {
	svc       *AuthServiceImpl
	admins    *stubAdminRepo
	employees *stubEmployeeRepo
	tokens    *tokenstore.Store
	mailer    *stubMailer
	jwt       jwt.Service
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		admins: &stubAdminRepo{admins: map[string]auth.Admin{
			"admin@example.com": {ID: "a-1", Email: "admin@example.com", PasswordHash: hash(t, testPassword)},
		}},
		employees: &stubEmployeeRepo{employees: map[int64]employee.Employee{
			7: {ID: 7, Name: "Asha", Email: "asha@example.com", PasswordHash: hash(t, testPassword)},
		}},
		tokens: tokenstore.New(30 * time.Minute),
		mailer: &stubMailer{},
		jwt:    jwt.NewJWTService(testSecret, testAccessExp),
	}
	f.svc = NewAuthService(f.admins, f.employees, f.jwt, f.tokens, f.mailer, "http://portal.local/").(*AuthServiceImpl)
	f.svc.bcryptCost = bcrypt.MinCost
	return f
}

func decode(t *testing.T, f *fixture, token string) map[string]interface{} {
	t.Helper()
	parsed, err := jwtauth.VerifyToken(f.jwt.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := parsed.AsMap(context.Background())
	require.NoError(t, err)
	return claims
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.AdminLogin(ctx, auth.AdminLoginRequest{Email: "Admin@Example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, resp.Role)
	assert.Nil(t, resp.EmployeeID)

	claims := decode(t, f, resp.AccessToken)
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "a-1", claims["user_id"])

	_, err = f.svc.AdminLogin(ctx, auth.AdminLoginRequest{Email: "admin@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.AdminLogin(ctx, auth.AdminLoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestEmployeeLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.EmployeeLogin(ctx, auth.EmployeeLoginRequest{EmployeeID: 7, Email: "ASHA@example.com", Password: testPassword})
	require.NoError(t, err)
	require.NotNil(t, resp.EmployeeID)
	assert.Equal(t, int64(7), *resp.EmployeeID)
	assert.Equal(t, "Asha", resp.Name)

	id, ok := jwt.EmployeeIDFromClaims(decode(t, f, resp.AccessToken))
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	tests := []struct {
		name string
		req  auth.EmployeeLoginRequest
	}{
		{"unknown employee", auth.EmployeeLoginRequest{EmployeeID: 8, Email: "asha@example.com", Password: testPassword}},
		{"email mismatch", auth.EmployeeLoginRequest{EmployeeID: 7, Email: "ravi@example.com", Password: testPassword}},
		{"wrong password", auth.EmployeeLoginRequest{EmployeeID: 7, Email: "asha@example.com", Password: "nope-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.EmployeeLogin(ctx, tt.req)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{EmployeeID: 7}))
	require.Len(t, f.mailer.sent, 1)

	mail := f.mailer.sent[0]
	assert.Equal(t, "asha@example.com", mail.to)
	assert.True(t, strings.HasPrefix(mail.link, "http://portal.local/?"))

	link, err := url.Parse(mail.link)
	require.NoError(t, err)
	assert.Equal(t, "employee", link.Query().Get("type"))
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	require.NoError(t, f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"}))

	_, err = f.svc.EmployeeLogin(ctx, auth.EmployeeLoginRequest{EmployeeID: 7, Email: "asha@example.com", Password: "brand-new-pass"})
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: token, NewPassword: "another-pass"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestForgotPassword_UnknownEmployee(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ForgotPassword(context.Background(), auth.ForgotPasswordRequest{EmployeeID: 99})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.Empty(t, f.mailer.sent)
	assert.Equal(t, 0, f.tokens.Len())
}

func TestForgotPassword_MailFailureDropsToken(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")

	err := f.svc.ForgotPassword(context.Background(), auth.ForgotPasswordRequest{EmployeeID: 7})
	require.Error(t, err)
	assert.Equal(t, 0, f.tokens.Len())
}

func TestResetPassword_WrongTypeKeepsToken(t *testing.T) {
	f := newFixture(t)
	token, _ := f.tokens.Issue(7, "asha@example.com", "admin")

	err := f.svc.ResetPassword(context.Background(), auth.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, auth.ErrInvalidTokenType)
	assert.Equal(t, 1, f.tokens.Len())
}

func TestResetPassword_UpdateFailureRestoresToken(t *testing.T) {
	f := newFixture(t)
	f.employees.updateErr = errors.New("db unavailable")
	token, _ := f.tokens.Issue(7, "asha@example.com", "employee")

	err := f.svc.ResetPassword(context.Background(), auth.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"})
	require.Error(t, err)
	assert.Equal(t, 1, f.tokens.Len())

	f.employees.updateErr = nil
	assert.NoError(t, f.svc.ResetPassword(context.Background(), auth.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"}))
}

func TestResetPassword_Expired(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.tokens.WithClock(func() time.Time { return now })
	token, _ := f.tokens.Issue(7, "asha@example.com", "employee")

	now = now.Add(31 * time.Minute)
	err := f.svc.ResetPassword(context.Background(), auth.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSeedAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SeedAdmin(ctx, " Boss@Example.com ", "boss-password"))
	_, err := f.svc.AdminLogin(ctx, auth.AdminLoginRequest{Email: "boss@example.com", Password: "boss-password"})
	assert.NoError(t, err)

	before := f.admins.admins["admin@example.com"].PasswordHash
	require.NoError(t, f.svc.SeedAdmin(ctx, "admin@example.com", "changed-password"))
	assert.Equal(t, before, f.admins.admins["admin@example.com"].PasswordHash)

	assert.NoError(t, f.svc.SeedAdmin(ctx, "", ""))
}
