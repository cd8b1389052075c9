package httpapi

import (
	"errors"
	"net/http"

	"github.com/emergencybox/emergencybox/internal/announcements"
	"github.com/emergencybox/emergencybox/internal/files"
	"github.com/emergencybox/emergencybox/internal/messages"
)

// ErrInvalidRequest covers malformed transport input: unparseable JSON,
// bad path parameters, missing multipart parts.
var ErrInvalidRequest = errors.New("invalid request")

func MapError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", err.Error()

	case errors.Is(err, messages.ErrEmptyBody):
		return http.StatusBadRequest, "empty_body", err.Error()

	case errors.Is(err, messages.ErrBodyTooLong):
		return http.StatusBadRequest, "body_too_long", err.Error()

	case errors.Is(err, messages.ErrUsernameTooLong):
		return http.StatusBadRequest, "username_too_long", err.Error()

	case errors.Is(err, files.ErrNoFile):
		return http.StatusBadRequest, "no_file", err.Error()

	case errors.Is(err, files.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large", err.Error()

	case errors.Is(err, files.ErrInvalidCategory):
		return http.StatusBadRequest, "invalid_category", err.Error()

	case errors.Is(err, files.ErrFileNotFound):
		return http.StatusNotFound, "file_not_found", err.Error()

	case errors.Is(err, files.ErrNamespaceExhausted):
		return http.StatusInternalServerError, "io_error", err.Error()

	case errors.Is(err, files.ErrIO):
		return http.StatusInternalServerError, "io_error", "file write failed, safe to retry"

	case errors.Is(err, announcements.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_message", err.Error()

	case errors.Is(err, announcements.ErrMessageTooLong):
		return http.StatusBadRequest, "message_too_long", err.Error()
	}

	return http.StatusInternalServerError, "store_error", "internal server error"
}
