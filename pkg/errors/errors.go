package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail          = errors.New("email is already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrAccountInactive         = errors.New("user account is inactive")
	ErrEmailNotVerified        = errors.New("email address is not verified")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrWrongTokenType = errors.New("wrong token type")
	ErrUserNotFound   = errors.New("user not found")

	ErrInvalidVerificationToken = errors.New("verification token is invalid or has expired")
	ErrAlreadyVerified          = errors.New("email has already been verified")
	ErrInvalidResetToken        = errors.New("reset token is invalid or has expired")

	ErrCorruptCredential = errors.New("stored credential digest is malformed")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
