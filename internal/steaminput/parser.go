package steaminput

import (
	"regexp"
	"strings"
)

// Kind classifies what shape of identifier the user typed.
type Kind string

const (
	KindSteamID64  Kind = "steamid64"
	KindVanity     Kind = "vanity"
	KindProfileURL Kind = "profileUrl"
)

// ParsedInput is the normalized result of classifying one raw input string.
// SteamID64 is set only when the input already encodes the canonical id;
// otherwise Value holds a vanity name that still needs remote resolution.
type ParsedInput struct {
	Kind      Kind
	Value     string
	SteamID64 string
}

// NeedsResolution reports whether the vanity name in Value must be
// resolved to a SteamID64 before the library can be fetched.
func (p ParsedInput) NeedsResolution() bool {
	return p.SteamID64 == ""
}

var (
	// SteamID64 is a 17-digit number
	steamID64Re = regexp.MustCompile(`^[0-9]{17}$`)

	// Full community profile URLs
	profileURLRe = regexp.MustCompile(`^https?://steamcommunity\.com/profiles/([0-9]{17})/?$`)
	vanityURLRe  = regexp.MustCompile(`^https?://steamcommunity\.com/id/([a-zA-Z0-9_-]+)/?$`)

	// Bare vanity name (2-32 alnum/underscore/hyphen)
	vanityRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,32}$`)
)

// Parse classifies raw into a ParsedInput. It is pure and deterministic:
// no I/O, no environment access. The second return is false for anything
// that is not a SteamID64, a vanity name, or a community profile URL.
//
// Precedence, first match wins: direct id, profile URL with id,
// profile URL with vanity, bare vanity.
func Parse(raw string) (ParsedInput, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ParsedInput{}, false
	}

	if steamID64Re.MatchString(trimmed) {
		return ParsedInput{
			Kind:      KindSteamID64,
			Value:     trimmed,
			SteamID64: trimmed,
		}, true
	}

	if m := profileURLRe.FindStringSubmatch(trimmed); m != nil {
		return ParsedInput{
			Kind:      KindProfileURL,
			Value:     m[1],
			SteamID64: m[1],
		}, true
	}

	if m := vanityURLRe.FindStringSubmatch(trimmed); m != nil {
		// A vanity extracted from a URL still has to satisfy the
		// bare-name constraints before we send it upstream.
		if !vanityRe.MatchString(m[1]) {
			return ParsedInput{}, false
		}
		return ParsedInput{
			Kind:  KindProfileURL,
			Value: m[1],
		}, true
	}

	if vanityRe.MatchString(trimmed) {
		return ParsedInput{
			Kind:  KindVanity,
			Value: trimmed,
		}, true
	}

	return ParsedInput{}, false
}
