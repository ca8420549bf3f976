// Package repository implements the data access layer over the shared
// store. Failures that handlers must tell apart are exposed as sentinel
// errors here; everything else that comes back from the database is an
// unexpected storage failure and surfaces to clients only as a generic
// message.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the referenced id does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicateRole is returned when a role name (after trimming) is
// already taken by another role.
var ErrDuplicateRole = errors.New("role name already exists")

// ErrDuplicateUser is returned when a user's email or username collides
// with an existing account.
var ErrDuplicateUser = errors.New("duplicate email or username")

// ErrRoleInUse is returned when a role cannot be deleted because users
// still reference it.
var ErrRoleInUse = errors.New("role is assigned to users")

// ErrAdminRoleProtected is returned when deleting the reserved admin
// role is attempted. The admin role can never be deleted.
var ErrAdminRoleProtected = errors.New("cannot delete the default admin role")

// ErrInvalidCredentials is returned for both an unknown username and a
// wrong password so the two cases cannot be told apart by callers.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports malformed or missing input. The message is
// safe to show to clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
