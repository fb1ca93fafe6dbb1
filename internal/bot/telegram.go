package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"pythia/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type Forecaster interface {
	Analyze(ctx context.Context, symbol string, tf domain.Timeframe) (*domain.CompositeResult, error)
}

type WatchlistManager interface {
	Add(ctx context.Context, symbol, note string) (*domain.WatchlistEntry, error)
	Remove(ctx context.Context, symbol string) (bool, error)
	List(ctx context.Context) ([]domain.WatchlistEntry, error)
}

func StartTelegramBot(analysisService Forecaster, watchlistService WatchlistManager) *AlertDispatcher {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/forecast", func(c tele.Context) error {
		if analysisService == nil {
			return c.Send("Analysis service unavailable")
		}
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /forecast BTC [1h|1d|1w]\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if _, ok := domain.CoinGeckoID[symbol]; !ok {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}
		tf := domain.TimeframeMedium
		if len(args) > 1 {
			tf = domain.Timeframe(strings.ToLower(args[1]))
			if !tf.IsValid() {
				return c.Send("Timeframe must be one of: 1h, 1d, 1w")
			}
		}
		result, err := analysisService.Analyze(context.Background(), symbol, tf)
		if err != nil {
			return c.Send(fmt.Sprintf("Error analyzing %s: %v", symbol, err))
		}
		return c.Send(formatForecast(*result))
	})

	b.Handle("/watchlist", func(c tele.Context) error {
		if watchlistService == nil {
			return c.Send("Watchlist unavailable")
		}
		args := c.Args()
		if len(args) == 0 {
			entries, err := watchlistService.List(context.Background())
			if err != nil {
				return c.Send(fmt.Sprintf("Error loading watchlist: %v", err))
			}
			if len(entries) == 0 {
				return c.Send("Watchlist is empty. Add with /watchlist add BTC")
			}
			lines := make([]string, 0, len(entries)+1)
			lines = append(lines, "Watched symbols:")
			for _, e := range entries {
				line := fmt.Sprintf("%s (since %s)", e.Symbol, e.AddedAt.UTC().Format("2006-01-02"))
				if e.Note != "" {
					line += " - " + e.Note
				}
				lines = append(lines, line)
			}
			return c.Send(strings.Join(lines, "\n"))
		}

		switch strings.ToLower(args[0]) {
		case "add":
			if len(args) < 2 {
				return c.Send("Usage: /watchlist add BTC [note]")
			}
			note := strings.Join(args[2:], " ")
			entry, err := watchlistService.Add(context.Background(), args[1], note)
			if err != nil {
				return c.Send(fmt.Sprintf("Error: %v", err))
			}
			return c.Send(fmt.Sprintf("Watching %s", entry.Symbol))
		case "remove":
			if len(args) < 2 {
				return c.Send("Usage: /watchlist remove BTC")
			}
			removed, err := watchlistService.Remove(context.Background(), args[1])
			if err != nil {
				return c.Send(fmt.Sprintf("Error: %v", err))
			}
			if !removed {
				return c.Send(fmt.Sprintf("%s is not on the watchlist", strings.ToUpper(args[1])))
			}
			return c.Send(fmt.Sprintf("Stopped watching %s", strings.ToUpper(args[1])))
		default:
			return c.Send("Usage: /watchlist | /watchlist add BTC | /watchlist remove BTC")
		}
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Forecast alerts enabled for this chat.")
			}
			return c.Send("Forecast alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Forecast alerts disabled for this chat.")
			}
			return c.Send("Forecast alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func formatForecast(r domain.CompositeResult) string {
	return fmt.Sprintf(
		"%s %s: %s (%.0f%% confidence, %s agreement)\n%s",
		r.Symbol,
		r.Timeframe,
		r.Prediction,
		r.Confidence,
		strings.ToLower(string(r.Agreement)),
		r.Explanation,
	)
}
