package models

// Profile is the player summary for the profile that owns the library.
type Profile struct {
	SteamID64    string `json:"steamId64"`
	PersonaName  string `json:"personaname"`
	ProfileURL   string `json:"profileUrl"`
	Avatar       string `json:"avatar"`
	AvatarMedium string `json:"avatarMedium"`
	AvatarFull   string `json:"avatarFull"`
	PersonaState int    `json:"personaState"` // 0 = offline, 1 = online, ...
	RealName     string `json:"realName,omitempty"`
	CountryCode  string `json:"locCountryCode,omitempty"`
	TimeCreated  int64  `json:"timeCreated,omitempty"` // account creation, unix seconds
}

// SavedProfile is one entry in the consent-gated local profile store.
// Unique by SteamID64; saving an existing id replaces the entry.
type SavedProfile struct {
	SteamID64   string  `json:"steamId64"`
	DisplayName *string `json:"displayName"`
	VanityURL   *string `json:"vanityUrl"`
	SavedAt     int64   `json:"savedAt"` // unix millis
	AvatarURL   string  `json:"avatarUrl,omitempty"`
}
