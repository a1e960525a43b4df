package model

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrIndexUnavailable = errors.New("post index unavailable")
)
