package metadata

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Fetcher *Fetcher
}

func NewHandler(fetcher *Fetcher) *Handler {
	return &Handler{Fetcher: fetcher}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/get-game-details", h.getGameDetails)
}

type gameDetailsReq struct {
	AppIDs []int64 `json:"appIds"`
}

func (h *Handler) getGameDetails(c *gin.Context) {
	var req gameDetailsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.AppIDs == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid input"})
		return
	}

	res := h.Fetcher.EnsureMetadata(c.Request.Context(), req.AppIDs)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res.Records,
	})
}
