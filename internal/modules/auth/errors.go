package auth

import "errors"

var (
	ErrUserNotFound       = errors.New("no account for this contact method")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrPhoneAlreadyExists = errors.New("phone already registered")
	ErrInvalidChannel     = errors.New("unknown delivery channel")
	ErrInvalidContact     = errors.New("contact method is incomplete")
	ErrUnknownCountryCity = errors.New("city does not belong to the selected country")
	ErrNotVerified        = errors.New("phone has not passed verification")
)
