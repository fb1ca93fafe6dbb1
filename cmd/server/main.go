package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"pythia/internal/bot"
	"pythia/internal/cache"
	"pythia/internal/config"
	"pythia/internal/db"
	"pythia/internal/fusion"
	"pythia/internal/handler"
	"pythia/internal/job"
	"pythia/internal/predictor"
	"pythia/internal/provider"
	"pythia/internal/repository"
	"pythia/internal/scorer"
	"pythia/internal/service"
	"pythia/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "pythia/docs"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initPostgresFunc         = db.InitPostgres
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newWatchlistRepoFunc     = repository.NewWatchlistRepository
	newPredictionRepoFunc    = repository.NewPredictionRepository
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) service.PriceFetcher {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newFusionEngineFunc       = fusion.NewEngine
	newAnalysisServiceFunc    = service.NewAnalysisService
	newBacktestServiceFunc    = service.NewBacktestService
	newWatchlistServiceFunc   = service.NewWatchlistService
	newRefresherFunc          = job.NewWatchlistRefresher
	startRefresherFunc        = func(r *job.WatchlistRefresher, ctx context.Context) { go r.Start(ctx) }
	startTelegramBotFunc      = bot.StartTelegramBot
	newHandlerFunc            = handler.New
	newRouterFunc             = gin.Default
	setupSignalNotify         = ossignal.Notify
	waitForSignalFunc         = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc       = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc    = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Pythia API
// @version         1.0
// @description     Multi-signal cryptocurrency analysis service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations. Persistence stays optional:
	// without a database the services degrade rather than fail.
	var predictionStore service.PredictionStore
	var watchlistRepo service.WatchlistRepository
	if db.Pool != nil {
		watchRepo := newWatchlistRepoFunc(db.Pool, tracer)
		predRepo := newPredictionRepoFunc(db.Pool, tracer)
		if err := watchRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run watchlist migrations: %v", err)
		}
		if err := predRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run prediction migrations: %v", err)
		}
		watchlistRepo = watchRepo
		predictionStore = predRepo
	}

	// Create providers and services
	cgProvider := newCoinGeckoProviderFunc(tracer)
	ttlCache := cache.NewRedisCache(cache.Client)
	engine := newFusionEngineFunc(
		scorer.NewOnChainScorer(scorer.NewSimulatedOnChain(nil)),
		scorer.NewSocialScorer(scorer.NewSimulatedSocial(nil)),
		nil,
	)
	analysisService := newAnalysisServiceFunc(tracer, cgProvider, engine, predictor.New(), predictionStore, ttlCache)
	backtestService := newBacktestServiceFunc(tracer, cgProvider, ttlCache, cfg.BacktestMaxSteps)
	watchlistService := newWatchlistServiceFunc(tracer, watchlistRepo)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	alerts := startTelegramBotFunc(analysisService, watchlistService)

	// Start watchlist refresher (stopped by ctx cancel)
	refresher := newRefresherFunc(tracer, analysisService, watchlistService, alerts, time.Duration(cfg.WatchlistRefreshSecs)*time.Second)
	startRefresherFunc(refresher, ctx)

	// Create handlers and routes
	h := newHandlerFunc(tracer, analysisService, backtestService, watchlistService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("pythia"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
