package steam

import (
	"fmt"

	"steamshelf/pkg/models"
)

// Base URL for game icons/logos on Steam's media CDN.
const mediaBase = "https://media.steampowered.com/steamcommunity/public/images/apps"

// NormalizeOwnedGames maps the raw owned-games payload into Games plus
// the library size. Pure shape coercion: absent playtime becomes 0,
// an absent name becomes "App {appid}", a missing image hash becomes a
// nil URL. Callers decide what an absent games field means; this only
// normalizes what is there.
func NormalizeOwnedGames(res OwnedGamesResult) ([]models.Game, int) {
	games := make([]models.Game, 0, len(res.Games))
	for _, raw := range res.Games {
		games = append(games, normalizeGame(raw))
	}

	count := len(games)
	if res.GameCount != nil {
		count = int(*res.GameCount)
	}
	return games, count
}

func normalizeGame(raw RawGame) models.Game {
	name := raw.Name
	if name == "" {
		name = fmt.Sprintf("App %d", raw.AppID)
	}

	return models.Game{
		AppID:                 raw.AppID,
		Name:                  name,
		PlaytimeMinutes:       raw.PlaytimeForever,
		PlaytimeRecentMinutes: raw.Playtime2Weeks,
		IconURL:               mediaURL(raw.AppID, raw.ImgIconURL),
		LogoURL:               mediaURL(raw.AppID, raw.ImgLogoURL),
	}
}

// mediaURL builds an image URL from an app id and hash, or nil when the
// hash is absent. Never an empty or malformed URL.
func mediaURL(appID int64, hash string) *string {
	if hash == "" {
		return nil
	}
	u := fmt.Sprintf("%s/%d/%s.jpg", mediaBase, appID, hash)
	return &u
}

// NormalizeProfile maps a raw player summary into a Profile.
func NormalizeProfile(raw RawPlayerSummary) models.Profile {
	return models.Profile{
		SteamID64:    raw.SteamID,
		PersonaName:  raw.PersonaName,
		ProfileURL:   raw.ProfileURL,
		Avatar:       raw.Avatar,
		AvatarMedium: raw.AvatarMedium,
		AvatarFull:   raw.AvatarFull,
		PersonaState: raw.PersonaState,
		RealName:     raw.RealName,
		CountryCode:  raw.LocCountryCode,
		TimeCreated:  raw.TimeCreated,
	}
}

// FormatPlaytime renders minutes as a short human string for the CLI.
func FormatPlaytime(minutes int64) string {
	if minutes == 0 {
		return "Never played"
	}
	hours := float64(minutes) / 60
	if hours < 1 {
		return fmt.Sprintf("%d min", minutes)
	}
	if hours < 10 {
		return fmt.Sprintf("%.1f hrs", hours)
	}
	return fmt.Sprintf("%.0f hrs", hours)
}
