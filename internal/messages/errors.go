package messages

import (
	"errors"
)

var (
	ErrEmptyBody       = errors.New("message cannot be empty")
	ErrBodyTooLong     = errors.New("message too long (max 1000 characters)")
	ErrUsernameTooLong = errors.New("username too long (max 50 characters)")
)
