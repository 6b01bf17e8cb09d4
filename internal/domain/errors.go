package domain

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden is returned when the caller is not authorized for the operation
	ErrForbidden = errors.New("forbidden")

	// ErrDuplicateReview is returned when the user already has an active review for the entity
	ErrDuplicateReview = errors.New("duplicate review")

	// ErrDuplicateReply is returned when the review already has an owner reply
	ErrDuplicateReply = errors.New("duplicate reply")

	// ErrEditLimitReached is returned when a review has exhausted its edit allowance
	ErrEditLimitReached = errors.New("edit limit reached")

	// ErrConflict is returned when there's a conflict (e.g., duplicate slug)
	ErrConflict = errors.New("conflict occurred")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)
