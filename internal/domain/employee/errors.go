package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeIDExists = errors.New("employee id already exists")
	ErrEmailExists      = errors.New("email already registered")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)
