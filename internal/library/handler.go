package library

import (
	"errors"
	"log"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"steamshelf/internal/steam"
	"steamshelf/pkg/models"
)

var (
	steamID64Re = regexp.MustCompile(`^[0-9]{17}$`)

	// 2-32 alnum/underscore/hyphen, same rule the parser applies
	vanityRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,32}$`)
)

type Handler struct {
	API SteamAPI
	WF  *Workflow
}

func NewHandler(api SteamAPI) *Handler {
	return &Handler{API: api, WF: NewWorkflow(api)}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resolve-vanity", h.resolveVanity)
	rg.POST("/get-owned-games", h.getOwnedGames)
}

type resolveVanityReq struct {
	VanityURL string `json:"vanityUrl"`
}

func (h *Handler) resolveVanity(c *gin.Context) {
	var req resolveVanityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.VanityURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": models.ErrInvalidInputFormat})
		return
	}

	if !vanityRe.MatchString(req.VanityURL) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": models.ErrInvalidInputFormat})
		return
	}

	steamID64, err := h.API.ResolveVanity(c.Request.Context(), req.VanityURL)
	if err != nil {
		code := steam.CodeOf(err)
		log.Printf("[library] resolve vanity %q: %v", req.VanityURL, err)
		c.JSON(statusFor(code), gin.H{"success": false, "error": code})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "steamId64": steamID64})
}

type getOwnedGamesReq struct {
	SteamID64 string `json:"steamId64"`
}

func (h *Handler) getOwnedGames(c *gin.Context) {
	var req getOwnedGamesReq
	if err := c.ShouldBindJSON(&req); err != nil || !steamID64Re.MatchString(req.SteamID64) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": models.ErrInvalidInputFormat})
		return
	}

	res, err := h.WF.FetchLibrary(c.Request.Context(), req.SteamID64)
	if err != nil {
		code := failureCode(err)
		log.Printf("[library] fetch %s: %v", req.SteamID64, err)
		c.JSON(statusFor(code), gin.H{"success": false, "error": code})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"games":     res.Games,
		"gameCount": res.GameCount,
		"profile":   res.Profile,
	})
}

func failureCode(err error) models.ErrorCode {
	var f *Failure
	if errors.As(err, &f) {
		return f.Code
	}
	return models.ErrSteamAPIError
}

// statusFor maps error codes to HTTP statuses the way the API contract
// fixes them: local validation 400, not-found 404, upstream trouble 502,
// back-off 429. Semantically-empty results (private/empty library) ride
// a 200 with success:false, they are answers, not transport failures.
func statusFor(code models.ErrorCode) int {
	switch code {
	case models.ErrInvalidInputFormat:
		return http.StatusBadRequest
	case models.ErrVanityNotFound:
		return http.StatusNotFound
	case models.ErrRateLimited:
		return http.StatusTooManyRequests
	case models.ErrProfilePrivate, models.ErrEmptyLibrary:
		return http.StatusOK
	default:
		return http.StatusBadGateway
	}
}
