package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Species passes the analysis API's species catalog through. Like the other
// proxies, failures surface as 502.
func (h *Handler) Species(c *gin.Context) {
	species, err := h.api.Species(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusBadGateway, "analysis API unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"species": species})
}

func (h *Handler) MarketData(c *gin.Context) {
	prices, err := h.api.MarketData(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusBadGateway, "analysis API unavailable", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"market_data": prices})
}

func (h *Handler) Health(c *gin.Context) {
	status, err := h.api.Health(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusBadGateway, "analysis API unavailable", err)
		return
	}
	c.JSON(http.StatusOK, status)
}
