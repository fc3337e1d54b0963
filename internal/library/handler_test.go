package library

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamshelf/internal/steam"
	"steamshelf/pkg/models"
)

func testRouter(api SteamAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(api).RegisterRoutes(r.Group("/api"))
	return r
}

func doPost(t *testing.T, r *gin.Engine, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestResolveVanity_OK(t *testing.T) {
	r := testRouter(&stubAPI{resolveID: "76561197960287930"})

	w, body := doPost(t, r, "/api/resolve-vanity", `{"vanityUrl":"gabelogannewell"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "76561197960287930", body["steamId64"])
}

func TestResolveVanity_InvalidInput(t *testing.T) {
	r := testRouter(&stubAPI{})

	for _, payload := range []string{
		`{}`,
		`{"vanityUrl":"a"}`,
		`{"vanityUrl":"has spaces"}`,
		`not json`,
	} {
		w, body := doPost(t, r, "/api/resolve-vanity", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code, "payload %q", payload)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, string(models.ErrInvalidInputFormat), body["error"])
	}
}

func TestResolveVanity_NotFound(t *testing.T) {
	r := testRouter(&stubAPI{resolveErr: &steam.Error{Code: models.ErrVanityNotFound}})

	w, body := doPost(t, r, "/api/resolve-vanity", `{"vanityUrl":"nobody"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(models.ErrVanityNotFound), body["error"])
}

func TestGetOwnedGames_OK(t *testing.T) {
	api := &stubAPI{
		owned:   okOwned(2),
		summary: steam.RawPlayerSummary{SteamID: "76561197960287930", PersonaName: "Rabscuttle"},
	}
	r := testRouter(api)

	w, body := doPost(t, r, "/api/get-owned-games", `{"steamId64":"76561197960287930"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["gameCount"])
	assert.Len(t, body["games"], 2)

	profile, ok := body["profile"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Rabscuttle", profile["personaname"])
}

func TestGetOwnedGames_BadID(t *testing.T) {
	r := testRouter(&stubAPI{})

	w, body := doPost(t, r, "/api/get-owned-games", `{"steamId64":"12345"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(models.ErrInvalidInputFormat), body["error"])
}

func TestGetOwnedGames_PrivateIs200(t *testing.T) {
	api := &stubAPI{
		owned:   steam.OwnedGamesResult{GamesPresent: false},
		summary: steam.RawPlayerSummary{SteamID: "76561197960287930"},
	}
	r := testRouter(api)

	w, body := doPost(t, r, "/api/get-owned-games", `{"steamId64":"76561197960287930"}`)
	assert.Equal(t, http.StatusOK, w.Code, "private profile is an answer, not a transport failure")
	assert.Equal(t, false, body["success"])
	assert.Equal(t, string(models.ErrProfilePrivate), body["error"])
}

func TestGetOwnedGames_UpstreamDownIs502(t *testing.T) {
	api := &stubAPI{
		ownedErr: &steam.Error{Code: models.ErrSteamAPIError},
		summary:  steam.RawPlayerSummary{SteamID: "76561197960287930"},
	}
	r := testRouter(api)

	w, body := doPost(t, r, "/api/get-owned-games", `{"steamId64":"76561197960287930"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, string(models.ErrSteamAPIError), body["error"])
}

func TestGetOwnedGames_RateLimitedIs429(t *testing.T) {
	api := &stubAPI{
		ownedErr: &steam.Error{Code: models.ErrRateLimited},
		summary:  steam.RawPlayerSummary{SteamID: "76561197960287930"},
	}
	r := testRouter(api)

	w, body := doPost(t, r, "/api/get-owned-games", `{"steamId64":"76561197960287930"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, string(models.ErrRateLimited), body["error"])
}
