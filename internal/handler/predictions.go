package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pythia/internal/domain"
	"pythia/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPredictionHistory godoc
// @Summary      Persisted prediction history
// @Description  Lists previously computed forecasts, newest first, optionally filtered by symbol
// @Tags         analysis
// @Produce      json
// @Param        symbol  query  string  false  "Coin symbol filter (e.g. BTC)"
// @Param        limit   query  int     false  "Max records to return"  default(50)
// @Success      200  {array}   domain.PredictionRecord
// @Failure      400  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/predictions [get]
func (h *Handler) GetPredictionHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-prediction-history")
	defer span.End()

	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service unavailable"})
		return
	}

	symbol := strings.ToUpper(c.Query("symbol"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}

	records, err := h.analysisService.History(ctx, symbol, limit)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedSymbol) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             err.Error(),
				"supported_symbols": domain.SupportedSymbols,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load prediction history"})
		return
	}
	c.JSON(http.StatusOK, records)
}
