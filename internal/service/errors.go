package service

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionExpired     = errors.New("session expired (logged in on another device)")
	ErrEmailExists        = errors.New("email already exists")
	ErrRoleNotFound       = errors.New("role not found")
	ErrValidation         = errors.New("validation failed")

	ErrForbidden           = errors.New("forbidden")
	ErrInstitutionNotFound = errors.New("institution not found")
	ErrNoOrganization      = errors.New("user is not bound to an organization")

	ErrProductNotFound    = errors.New("product not found")
	ErrNoProducts         = errors.New("gtin_codes must not be empty")
	ErrMotivationTooLong  = errors.New("motivation must be at most 200 characters")
	ErrInvalidStatus      = errors.New("invalid product status")
	ErrConflict           = errors.New("some products cannot take this action")
	ErrUploadNotFound     = errors.New("product file not found")
	ErrReportNotFound     = errors.New("product file has no error report")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrConsentRequired    = errors.New("terms of service not accepted")
)

// ConflictError lists the products that blocked a status change.
type ConflictError struct {
	GtinCodes []string
}

func (e *ConflictError) Error() string {
	return ErrConflict.Error() + ": " + strings.Join(e.GtinCodes, ", ")
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
