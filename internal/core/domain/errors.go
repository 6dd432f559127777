package domain

import "errors"

// Common domain errors
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInternalServer  = errors.New("internal server error")
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidRole        = errors.New("invalid role")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Submission errors
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyVerified    = errors.New("submission already verified")
	ErrStationNotFound    = errors.New("station not found or invalid")
	ErrNotAssigned        = errors.New("submission not assigned to this station")
	ErrNotVerified        = errors.New("submission data not verified")
)
