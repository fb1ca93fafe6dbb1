package handler

import (
	"errors"
	"net/http"
	"strings"

	"pythia/internal/domain"
	"pythia/internal/service"

	"github.com/gin-gonic/gin"
)

type addWatchlistRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Note   string `json:"note"`
}

// GetWatchlist godoc
// @Summary      List watched symbols
// @Tags         watchlist
// @Produce      json
// @Success      200  {array}   domain.WatchlistEntry
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/watchlist [get]
func (h *Handler) GetWatchlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-watchlist")
	defer span.End()

	if h.watchlistService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist service unavailable"})
		return
	}

	entries, err := h.watchlistService.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load watchlist"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddToWatchlist godoc
// @Summary      Add a symbol to the watchlist
// @Tags         watchlist
// @Accept       json
// @Produce      json
// @Param        request  body  addWatchlistRequest  true  "Symbol to watch"
// @Success      201  {object}  domain.WatchlistEntry
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/watchlist [post]
func (h *Handler) AddToWatchlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.add-to-watchlist")
	defer span.End()

	if h.watchlistService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist service unavailable"})
		return
	}

	var req addWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	entry, err := h.watchlistService.Add(ctx, req.Symbol, req.Note)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedSymbol) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             err.Error(),
				"supported_symbols": domain.SupportedSymbols,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add to watchlist"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveFromWatchlist godoc
// @Summary      Remove a symbol from the watchlist
// @Tags         watchlist
// @Produce      json
// @Param        symbol  path  string  true  "Coin symbol (e.g. BTC)"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/watchlist/{symbol} [delete]
func (h *Handler) RemoveFromWatchlist(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.remove-from-watchlist")
	defer span.End()

	if h.watchlistService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist service unavailable"})
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	removed, err := h.watchlistService.Remove(ctx, symbol)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedSymbol) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             err.Error(),
				"supported_symbols": domain.SupportedSymbols,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove from watchlist"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": symbol + " is not on the watchlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed", "symbol": symbol})
}
