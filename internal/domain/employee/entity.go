package employee

import (
	"time"
)

// Employee is identified by an integer id assigned by the admin who creates it.
type Employee struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
