package models

// Game is the normalized, internal form of one owned game as returned
// by the Steam owned-games endpoint.
//
// Raw Steam payloads are mapped into this structure first; everything
// downstream (handlers, CLI, enrichment merge) works from it.
type Game struct {
	AppID                 int64   `json:"appId"`
	Name                  string  `json:"name"`                  // falls back to "App {appid}" when Steam omits it
	PlaytimeMinutes       int64   `json:"playtimeMinutes"`       // total playtime, minutes
	PlaytimeRecentMinutes *int64  `json:"playtimeRecentMinutes"` // last two weeks; nil when Steam omits it
	IconURL               *string `json:"iconUrl"`               // nil when no icon hash, never ""
	LogoURL               *string `json:"logoUrl"`
	CoverURL              *string `json:"coverUrl,omitempty"`

	// Enrichment fields, merged from GameMetadata after the fact.
	// A merge produces a new Game value; the original is never mutated.
	Genres      []string `json:"genres,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	ReleaseYear int      `json:"releaseYear,omitempty"`
}

// WithMetadata returns a copy of g with enrichment fields filled in.
func (g Game) WithMetadata(md GameMetadata) Game {
	g.Genres = md.Genres
	g.Platforms = md.Platforms
	if md.Year != nil {
		g.ReleaseYear = *md.Year
	}
	return g
}
