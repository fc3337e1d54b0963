package steam

import (
	"errors"

	"steamshelf/pkg/models"
)

// Error is an upstream failure tagged with the client-facing code.
// Wrapping keeps the transport detail available for logs while the
// handler layer only ever surfaces the code.
type Error struct {
	Code models.ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the error code from err, defaulting to STEAM_API_ERROR
// for plain transport errors.
func CodeOf(err error) models.ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return models.ErrSteamAPIError
}
