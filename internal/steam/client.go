package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"steamshelf/pkg/models"
)

// Steam Web API base (public)
const apiBase = "https://api.steampowered.com"

// Client calls the Steam Web API. All methods classify failures into
// models.ErrorCode via *Error so callers never branch on raw HTTP detail.
type Client struct {
	APIKey  string
	BaseURL string // overridden in tests
	HTTP    *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: apiBase,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type vanityEnvelope struct {
	Response struct {
		Success int    `json:"success"`
		SteamID string `json:"steamid"`
		Message string `json:"message"`
	} `json:"response"`
}

// RawGame is one entry from IPlayerService/GetOwnedGames before
// normalization.
type RawGame struct {
	AppID           int64  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int64  `json:"playtime_forever"`
	Playtime2Weeks  *int64 `json:"playtime_2weeks"`
	ImgIconURL      string `json:"img_icon_url"`
	ImgLogoURL      string `json:"img_logo_url"`
}

type ownedGamesEnvelope struct {
	Response struct {
		GameCount *int64     `json:"game_count"`
		Games     *[]RawGame `json:"games"`
	} `json:"response"`
}

// OwnedGamesResult is the decoded owned-games payload. GamesPresent
// records whether the games field existed at all: absent means a private
// profile, present-but-empty means an empty library.
type OwnedGamesResult struct {
	GamesPresent bool
	GameCount    *int64
	Games        []RawGame
}

// RawPlayerSummary is one player from ISteamUser/GetPlayerSummaries.
type RawPlayerSummary struct {
	SteamID        string `json:"steamid"`
	PersonaName    string `json:"personaname"`
	ProfileURL     string `json:"profileurl"`
	Avatar         string `json:"avatar"`
	AvatarMedium   string `json:"avatarmedium"`
	AvatarFull     string `json:"avatarfull"`
	PersonaState   int    `json:"personastate"`
	RealName       string `json:"realname"`
	LocCountryCode string `json:"loccountrycode"`
	TimeCreated    int64  `json:"timecreated"`
}

type playerSummariesEnvelope struct {
	Response struct {
		Players []RawPlayerSummary `json:"players"`
	} `json:"response"`
}

// ResolveVanity resolves a vanity name to a SteamID64.
// Steam reports success=1 for found; anything else (42 = no match) is
// VANITY_NOT_FOUND.
func (c *Client) ResolveVanity(ctx context.Context, name string) (string, error) {
	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("vanityurl", name)

	var env vanityEnvelope
	if err := c.getJSON(ctx, "/ISteamUser/ResolveVanityURL/v1/", q, &env); err != nil {
		return "", err
	}

	if env.Response.Success != 1 || env.Response.SteamID == "" {
		return "", &Error{Code: models.ErrVanityNotFound, Err: fmt.Errorf("steam: vanity %q not found", name)}
	}
	return env.Response.SteamID, nil
}

// OwnedGames fetches the owned-games list for a SteamID64.
// include_appinfo gives us names and image hashes; played free games are
// part of the library too.
func (c *Client) OwnedGames(ctx context.Context, steamID64 string) (OwnedGamesResult, error) {
	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("steamid", steamID64)
	q.Set("include_appinfo", "1")
	q.Set("include_played_free_games", "1")
	q.Set("format", "json")

	var env ownedGamesEnvelope
	if err := c.getJSON(ctx, "/IPlayerService/GetOwnedGames/v1/", q, &env); err != nil {
		return OwnedGamesResult{}, err
	}

	res := OwnedGamesResult{
		GamesPresent: env.Response.Games != nil,
		GameCount:    env.Response.GameCount,
	}
	if env.Response.Games != nil {
		res.Games = *env.Response.Games
	}
	return res, nil
}

// PlayerSummary fetches the profile summary for a SteamID64.
func (c *Client) PlayerSummary(ctx context.Context, steamID64 string) (RawPlayerSummary, error) {
	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("steamids", steamID64)

	var env playerSummariesEnvelope
	if err := c.getJSON(ctx, "/ISteamUser/GetPlayerSummaries/v2/", q, &env); err != nil {
		return RawPlayerSummary{}, err
	}

	if len(env.Response.Players) == 0 {
		return RawPlayerSummary{}, &Error{
			Code: models.ErrSteamAPIError,
			Err:  fmt.Errorf("steam: no player summary for %s", steamID64),
		}
	}
	return env.Response.Players[0], nil
}

// getJSON performs one GET and decodes the body, classifying transport,
// status and decode failures.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return &Error{Code: models.ErrSteamAPIError, Err: fmt.Errorf("steam: build request: %w", err)}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Code: models.ErrSteamAPIError, Err: fmt.Errorf("steam: request: %w", err)}
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &Error{Code: models.ErrRateLimited, Err: fmt.Errorf("steam: status 429")}
	case resp.StatusCode != http.StatusOK:
		return &Error{Code: models.ErrSteamAPIError, Err: fmt.Errorf("steam: status %d: %s", resp.StatusCode, string(body))}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return &Error{Code: models.ErrSteamAPIError, Err: fmt.Errorf("steam: decode: %w", err)}
	}
	return nil
}
