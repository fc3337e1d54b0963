package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"steamshelf/pkg/models"
)

const (
	twitchTokenURL = "https://id.twitch.tv/oauth2/token"
	igdbBase       = "https://api.igdb.com/v4"

	// uid source 1 is Steam in IGDB's external_games table
	igdbSteamSource = 1
)

// TokenSource caches the Twitch OAuth client-credentials token used as
// the IGDB bearer. The token is reused across batches and refreshed
// only when absent or explicitly invalidated after a 401.
type TokenSource struct {
	ClientID     string
	ClientSecret string
	TokenURL     string // overridden in tests
	HTTP         *http.Client

	mu    sync.Mutex
	token string
}

func NewTokenSource(clientID, clientSecret string, timeout time.Duration) *TokenSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TokenSource{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     twitchTokenURL,
		HTTP:         &http.Client{Timeout: timeout},
	}
}

// Token returns the cached bearer, requesting a fresh one if needed.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" {
		return t.token, nil
	}

	q := url.Values{}
	q.Set("client_id", t.ClientID)
	q.Set("client_secret", t.ClientSecret)
	q.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.TokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("igdb token: build request: %w", err)
	}

	resp, err := t.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("igdb token: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("igdb token: status %d: %s", resp.StatusCode, string(body))
	}

	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("igdb token: decode: %w", err)
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("igdb token: empty access_token")
	}

	t.token = data.AccessToken
	return t.token, nil
}

// Invalidate drops the cached token if it is still the one that failed,
// so the next Token call fetches a fresh one.
func (t *TokenSource) Invalidate(failed string) {
	t.mu.Lock()
	if t.token == failed {
		t.token = ""
	}
	t.mu.Unlock()
}

// IGDBClient queries IGDB's external_games endpoint by Steam appid.
type IGDBClient struct {
	ClientID string
	Tokens   *TokenSource
	BaseURL  string // overridden in tests
	HTTP     *http.Client
}

func NewIGDBClient(clientID string, tokens *TokenSource, timeout time.Duration) *IGDBClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &IGDBClient{
		ClientID: clientID,
		Tokens:   tokens,
		BaseURL:  igdbBase,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

type igdbExternalGame struct {
	UID  string `json:"uid"`
	Game struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Genres []struct {
			Name string `json:"name"`
		} `json:"genres"`
		TotalRating  *float64 `json:"total_rating"`
		Summary      string   `json:"summary"`
		ReleaseDates []struct {
			Y int `json:"y"`
		} `json:"release_dates"`
		Platforms []struct {
			Name string `json:"name"`
		} `json:"platforms"`
	} `json:"game"`
	ExternalGameSource *int `json:"external_game_source"`
}

// FetchBatch looks up one batch of appids. On a 401 the cached token is
// invalidated and the call retried once with a fresh one.
func (c *IGDBClient) FetchBatch(ctx context.Context, appIDs []int64) ([]models.GameMetadata, error) {
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	records, status, err := c.fetchOnce(ctx, appIDs, token)
	if status == http.StatusUnauthorized {
		c.Tokens.Invalidate(token)
		token, err = c.Tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		records, _, err = c.fetchOnce(ctx, appIDs, token)
	}
	return records, err
}

func (c *IGDBClient) fetchOnce(ctx context.Context, appIDs []int64, token string) ([]models.GameMetadata, int, error) {
	quoted := make([]string, len(appIDs))
	for i, id := range appIDs {
		quoted[i] = `"` + strconv.FormatInt(id, 10) + `"`
	}

	query := fmt.Sprintf(`
		fields game.name, game.genres.name, game.total_rating, game.summary, game.release_dates.y, game.platforms.name, uid, external_game_source;
		where uid = (%s) & external_game_source = %d;
		limit %d;
	`, strings.Join(quoted, ", "), igdbSteamSource, len(appIDs))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/external_games", strings.NewReader(query))
	if err != nil {
		return nil, 0, fmt.Errorf("igdb: build request: %w", err)
	}
	req.Header.Set("Client-ID", c.ClientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("igdb: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("igdb: status %d: %s", resp.StatusCode, string(body))
	}

	var items []igdbExternalGame
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("igdb: decode: %w", err)
	}

	now := time.Now().UTC()
	records := make([]models.GameMetadata, 0, len(items))
	for _, item := range items {
		appID, err := strconv.ParseInt(item.UID, 10, 64)
		if err != nil {
			continue // non-numeric uid, not a Steam appid
		}

		m := models.GameMetadata{
			AppID:              appID,
			Name:               item.Game.Name,
			Genres:             make([]string, 0, len(item.Game.Genres)),
			ExternalGameSource: item.ExternalGameSource,
			Rating:             item.Game.TotalRating,
			UpdatedAt:          now,
		}
		if item.Game.ID != 0 {
			id := item.Game.ID
			m.IGDBID = &id
		}
		for _, g := range item.Game.Genres {
			if g.Name != "" {
				m.Genres = append(m.Genres, g.Name)
			}
		}
		if len(item.Game.ReleaseDates) > 0 && item.Game.ReleaseDates[0].Y > 0 {
			y := item.Game.ReleaseDates[0].Y
			m.Year = &y
		}
		if len(item.Game.Platforms) > 0 {
			m.Platforms = make([]string, 0, len(item.Game.Platforms))
			for _, p := range item.Game.Platforms {
				if p.Name != "" {
					m.Platforms = append(m.Platforms, p.Name)
				}
			}
		}
		if item.Game.Summary != "" {
			s := item.Game.Summary
			m.Summary = &s
		}

		records = append(records, m)
	}

	return records, resp.StatusCode, nil
}
