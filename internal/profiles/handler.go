package profiles

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"steamshelf/pkg/models"
)

type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profiles", h.list)
	rg.POST("/profiles", h.save)
	rg.DELETE("/profiles/:steam_id", h.remove)
	rg.GET("/profiles/consent", h.getConsent)
	rg.PUT("/profiles/consent", h.setConsent)
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"consent":  h.Store.HasConsent(),
		"profiles": h.Store.List(),
	})
}

type saveReq struct {
	SteamID64   string  `json:"steamId64"`
	DisplayName *string `json:"displayName"`
	VanityURL   *string `json:"vanityUrl"`
	AvatarURL   string  `json:"avatarUrl"`
}

func (h *Handler) save(c *gin.Context) {
	var req saveReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SteamID64) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "steamId64 required"})
		return
	}

	p := models.SavedProfile{
		SteamID64:   strings.TrimSpace(req.SteamID64),
		DisplayName: req.DisplayName,
		VanityURL:   req.VanityURL,
		SavedAt:     time.Now().UnixMilli(),
		AvatarURL:   req.AvatarURL,
	}

	if !h.Store.Upsert(p) {
		c.JSON(http.StatusForbidden, gin.H{"error": "storage consent required"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) remove(c *gin.Context) {
	if !h.Store.Remove(c.Param("steam_id")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "storage consent required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) getConsent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"consent": h.Store.HasConsent()})
}

type consentReq struct {
	Consent bool `json:"consent"`
}

func (h *Handler) setConsent(c *gin.Context) {
	var req consentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if !h.Store.SetConsent(req.Consent) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"consent": req.Consent})
}
