package domain

import "errors"

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrNoText            = errors.New("no text was returned from the model")
	ErrMapsUnavailable   = errors.New("maps api key is not configured")
	ErrNoPlaceFound      = errors.New("no place found")
	ErrInvalidHistory    = errors.New("the last message must be from the user")
)
