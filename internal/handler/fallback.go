package handler

import (
	"errors"
	"net/http"
	"strings"

	"pythia/internal/domain"
	"pythia/internal/service"

	"github.com/gin-gonic/gin"
)

// GetFallbackPrediction godoc
// @Summary      Lightweight price direction prediction
// @Description  Runs the standalone predictor (neural net with rule-based fallback) on recent history
// @Tags         analysis
// @Produce      json
// @Param        symbol  path  string  true  "Coin symbol (e.g. BTC)"
// @Success      200  {object}  predictor.Result
// @Failure      400  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/fallback/{symbol} [get]
func (h *Handler) GetFallbackPrediction(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-fallback-prediction")
	defer span.End()

	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service unavailable"})
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	result, err := h.analysisService.PredictFallback(ctx, symbol)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedSymbol) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             err.Error(),
				"supported_symbols": domain.SupportedSymbols,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to predict " + symbol})
		return
	}
	c.JSON(http.StatusOK, result)
}
