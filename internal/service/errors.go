// Package service holds the authentication, menu resolution and permission
// editing logic that sits between handlers and repositories.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/projectdesk/internal/utils"
)

var (
	// ErrInvalidCredentials is returned for an unknown handle and for a wrong
	// password alike, so callers cannot probe which handles exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrInvalidToken       = utils.ErrInvalidToken
	// ErrNoMenuFound means the lookup succeeded but matched nothing.
	ErrNoMenuFound = errors.New("no menu entries found")
)

// ValidationError reports malformed input before any storage access.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }
