package forms

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidState    = errors.New("operation not valid in current session state")
	ErrBadFields       = errors.New("invalid field payload")
)

const (
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeInvalidState  = "INVALID_STATE"
	ErrorCodeConfiguration = "CONFIGURATION_ERROR"
	ErrorCodeConversion    = "CONVERSION_ERROR"
	ErrorCodeInternal      = "INTERNAL_ERROR"
)
