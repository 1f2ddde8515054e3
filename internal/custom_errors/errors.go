package custom_errors

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of them, so
// callers at the request boundary only need errors.Is against a category.
var (
	ErrValidation          = errors.New("validation error")
	ErrPermission          = errors.New("permission denied")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotFound            = errors.New("not found")
	ErrInternal            = errors.New("internal error")
)

// Validation
var (
	ErrInvalidInput       = fmt.Errorf("%w: invalid input", ErrValidation)
	ErrEmptyText          = fmt.Errorf("%w: text must not be empty", ErrValidation)
	ErrInvalidGroup       = fmt.Errorf("%w: select a valid group", ErrValidation)
	ErrInvalidImage       = fmt.Errorf("%w: upload a valid image", ErrValidation)
	ErrImageTooLarge      = fmt.Errorf("%w: image is too large", ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrValidation)
)

// Permission
var (
	ErrUnauthenticated = fmt.Errorf("%w: authentication required", ErrPermission)
	ErrForbidden       = fmt.Errorf("%w: not the owner", ErrPermission)
)

// Constraint
var (
	ErrSelfFollow       = fmt.Errorf("%w: cannot follow yourself", ErrConstraintViolation)
	ErrAlreadyFollowing = fmt.Errorf("%w: already following this author", ErrConstraintViolation)
	ErrSlugTaken        = fmt.Errorf("%w: group slug already exists", ErrConstraintViolation)
	ErrUsernameTaken    = fmt.Errorf("%w: username already exists", ErrConstraintViolation)
	ErrForeignKey       = fmt.Errorf("%w: referenced row does not exist", ErrConstraintViolation)
)

// Not found
var (
	ErrPostNotFound  = fmt.Errorf("%w: post not found", ErrNotFound)
	ErrGroupNotFound = fmt.Errorf("%w: group not found", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("%w: user not found", ErrNotFound)
)

// Infrastructure
var (
	ErrDatabaseQuery = fmt.Errorf("%w: database query failed", ErrInternal)
	ErrCacheMiss     = errors.New("cache miss")
	ErrImageStorage  = fmt.Errorf("%w: failed to store image", ErrInternal)
	ErrTokenInvalid  = errors.New("invalid or expired token")
)
