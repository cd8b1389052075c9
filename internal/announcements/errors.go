package announcements

import (
	"errors"
)

var (
	ErrEmptyMessage   = errors.New("announcement message cannot be empty")
	ErrMessageTooLong = errors.New("announcement too long (max 500 characters)")
)
