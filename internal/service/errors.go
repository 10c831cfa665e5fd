package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the current state
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidGSTIN is returned when a GSTIN fails the format check
	ErrInvalidGSTIN = errors.New("invalid GSTIN")

	// ErrInvalidGSTRate is returned when a line item carries a rate outside
	// the recognised slabs
	ErrInvalidGSTRate = errors.New("GST rate is not a recognised slab")

	// ErrDuplicateItemName is returned when a project already has a material
	// request for the same item
	ErrDuplicateItemName = errors.New("material already requested for this project")

	// ErrAlreadyCheckedIn is returned when a user checks in twice without
	// checking out
	ErrAlreadyCheckedIn = errors.New("already checked in")

	// ErrNotCheckedIn is returned when a check-out has no open check-in
	ErrNotCheckedIn = errors.New("no open check-in found")
)
