package policy

import "errors"

// Policy validation errors
var (
	ErrUnauthorized = errors.New("caller is not the owner")
	ErrTaxTooHigh   = errors.New("tax rate exceeds maximum")
	ErrLimitTooLow  = errors.New("limit below minimum threshold")
)
