package models

// ErrorCode is the fixed set of failure reasons exposed to clients.
// Raw upstream error text is never surfaced; each code maps to exactly
// one user-facing message.
type ErrorCode string

const (
	ErrInvalidInputFormat ErrorCode = "INVALID_INPUT_FORMAT"
	ErrVanityNotFound     ErrorCode = "VANITY_NOT_FOUND"
	ErrProfilePrivate     ErrorCode = "PROFILE_PRIVATE"
	ErrSteamAPIError      ErrorCode = "STEAM_API_ERROR"
	ErrEmptyLibrary       ErrorCode = "EMPTY_LIBRARY"
	ErrRateLimited        ErrorCode = "RATE_LIMITED"
)

// ErrorMessages maps each code to its one-line user-facing message.
var ErrorMessages = map[ErrorCode]string{
	ErrInvalidInputFormat: "That doesn't look like a valid Steam ID or profile URL.",
	ErrVanityNotFound:     "We couldn't find a Steam profile with that name.",
	ErrProfilePrivate:     "This Steam profile is private. The library must be set to public.",
	ErrSteamAPIError:      "Steam's servers aren't responding. Try again later.",
	ErrEmptyLibrary:       "This profile has no games, or the library is private.",
	ErrRateLimited:        "Too many requests. Wait a moment and try again.",
}

// Message returns the user-facing message for c, or a generic line for
// unknown codes.
func (c ErrorCode) Message() string {
	if m, ok := ErrorMessages[c]; ok {
		return m
	}
	return "Something went wrong. Try again later."
}
