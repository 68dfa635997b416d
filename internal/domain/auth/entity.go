package auth

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

type Admin struct {
	ID           string
	Email        string
	PasswordHash string
}
