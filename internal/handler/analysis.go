package handler

import (
	"errors"
	"net/http"
	"strings"

	"pythia/internal/domain"
	"pythia/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAnalysis godoc
// @Summary      Multi-signal analysis for a symbol
// @Description  Fuses technical, on-chain and social signals into a single forecast; source=technical returns the indicator ensemble alone
// @Tags         analysis
// @Produce      json
// @Param        symbol     path   string  true   "Coin symbol (e.g. BTC)"
// @Param        timeframe  query  string  false  "Forecast timeframe: 1h, 1d or 1w"  default(1d)
// @Param        source     query  string  false  "Signal source: fused or technical"  default(fused)
// @Success      200  {object}  domain.CompositeResult
// @Failure      400  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/analysis/{symbol} [get]
func (h *Handler) GetAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-analysis")
	defer span.End()

	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis service unavailable"})
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	tf := domain.Timeframe(c.DefaultQuery("timeframe", string(domain.TimeframeMedium)))

	switch c.DefaultQuery("source", "fused") {
	case "fused":
	case "technical":
		score, err := h.analysisService.AnalyzeTechnical(ctx, symbol)
		if err != nil {
			h.writeAnalysisError(c, symbol, err)
			return
		}
		c.JSON(http.StatusOK, score)
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid source: " + c.Query("source"),
			"supported_sources": []string{"fused", "technical"},
		})
		return
	}

	result, err := h.analysisService.Analyze(ctx, symbol, tf)
	if err != nil {
		h.writeAnalysisError(c, symbol, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeAnalysisError(c *gin.Context, symbol string, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedSymbol):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             err.Error(),
			"supported_symbols": domain.SupportedSymbols,
		})
	case errors.Is(err, service.ErrInvalidTimeframe):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                err.Error(),
			"supported_timeframes": domain.SupportedTimeframes,
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to analyze " + symbol})
	}
}
