package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pythia/internal/backtest"
	"pythia/internal/domain"
	"pythia/internal/service"

	"github.com/gin-gonic/gin"
)

// RunBacktest godoc
// @Summary      Walk-forward backtest of the technical strategy
// @Description  Replays the technical ensemble over historical prices and reports accuracy, returns and alpha versus buy-and-hold
// @Tags         backtest
// @Produce      json
// @Param        symbol    path   string  true   "Coin symbol (e.g. BTC)"
// @Param        period    query  string  false  "History window: 1mo, 3mo, 6mo, 1y, 2y, 5y"  default(1y)
// @Param        interval  query  int     false  "Prediction horizon in days (1-30)"  default(7)
// @Success      200  {object}  domain.BacktestReport
// @Failure      400  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/backtest/{symbol} [get]
func (h *Handler) RunBacktest(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-backtest")
	defer span.End()

	if h.backtestService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backtest service unavailable"})
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	period := c.DefaultQuery("period", "1y")
	interval, err := strconv.Atoi(c.DefaultQuery("interval", "7"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval must be an integer"})
		return
	}

	report, err := h.backtestService.Run(ctx, symbol, period, interval)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedSymbol):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             err.Error(),
				"supported_symbols": domain.SupportedSymbols,
			})
		case errors.Is(err, service.ErrInvalidPeriod):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             err.Error(),
				"supported_periods": []string{"1mo", "3mo", "6mo", "1y", "2y", "5y"},
			})
		case errors.Is(err, service.ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, backtest.ErrInsufficientData), errors.Is(err, backtest.ErrNoTrades):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to backtest " + symbol})
		}
		return
	}
	c.JSON(http.StatusOK, report)
}
