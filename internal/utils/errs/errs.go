package errs

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidFileType    = errors.New("unsupported file format (allowed: .xls, .xlsx)")
	ErrNoValidSheets      = errors.New("no sheet has the required columns: username, email, password")
	ErrEmptyFields        = errors.New("username, email and password are required")
)
