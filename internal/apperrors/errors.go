package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUnavailable indicates that the upstream backend could not be reached or
// returned an unusable response.
var ErrUnavailable = errors.New("upstream unavailable")
