package handler

import (
	"net/http"

	"pythia/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer           trace.Tracer
	analysisService  *service.AnalysisService
	backtestService  *service.BacktestService
	watchlistService *service.WatchlistService
}

func New(
	tracer trace.Tracer,
	analysisService *service.AnalysisService,
	backtestService *service.BacktestService,
	watchlistService *service.WatchlistService,
) *Handler {
	return &Handler{
		tracer:           tracer,
		analysisService:  analysisService,
		backtestService:  backtestService,
		watchlistService: watchlistService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/analysis/:symbol", h.GetAnalysis)
	r.GET("/api/fallback/:symbol", h.GetFallbackPrediction)
	r.GET("/api/backtest/:symbol", h.RunBacktest)
	r.GET("/api/predictions", h.GetPredictionHistory)
	r.GET("/api/watchlist", h.GetWatchlist)
	r.POST("/api/watchlist", h.AddToWatchlist)
	r.DELETE("/api/watchlist/:symbol", h.RemoveFromWatchlist)
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
