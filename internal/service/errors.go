package service

import (
	"errors"
	"fmt"

	"workshops/internal/repository"
)

// Error kinds. Handlers map them onto HTTP statuses with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotApproved = errors.New("account not approved")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrResetNotRequested  = errors.New("no password reset was requested for this account")
	ErrResetCodeExpired   = errors.New("password reset code has expired")
	ErrResetCodeInvalid   = errors.New("password reset code does not match")
)

// Error carries a user-facing message while still matching its kind under errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func invalid(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return &Error{Kind: ErrNotFound, Msg: what + " not found"}
}

// parentNotFound translates a write rejected because its user or workshop row is gone.
func parentNotFound(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return notFound("user")
	case errors.Is(err, repository.ErrWorkshopNotFound):
		return notFound("workshop")
	}
	return err
}
