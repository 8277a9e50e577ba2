package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dyli/olx-iphone-bot/internal/config"
	"github.com/dyli/olx-iphone-bot/internal/ledger"
	"github.com/dyli/olx-iphone-bot/internal/notifier"
	"github.com/dyli/olx-iphone-bot/internal/pricing"
	"github.com/dyli/olx-iphone-bot/internal/processor"
	"github.com/dyli/olx-iphone-bot/internal/scraper"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	selectors, err := scraper.LoadConfig()
	if err != nil {
		slog.Error("Failed to load selector configuration", "error", err)
		os.Exit(1)
	}

	history, err := ledger.Load(cfg.LedgerPath)
	if err != nil {
		slog.Error("Failed to load notification history", "error", err)
		os.Exit(1)
	}

	proc := processor.New(
		scraper.New(cfg, selectors),
		notifier.New(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.MaxMessageLength, cfg.IncludeDescription),
		history,
		pricing.NewPolicy(cfg.PriceLimits, cfg.PermissiveUnknown),
		cfg,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	}()

	if *once {
		if _, err := proc.Run(ctx); err != nil {
			slog.Error("Cycle failed", "error", err)
			shutdown(history, 1)
		}
		shutdown(history, 0)
	}

	slog.Info("Starting monitor loop",
		"query", cfg.SearchQuery,
		"delay_min", cfg.CycleDelayMin,
		"delay_max", cfg.CycleDelayMax)

	for {
		_, err := proc.Run(ctx)

		delay := cycleDelay(cfg)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("Cycle failed, backing off", "error", err, "backoff", cfg.ErrorBackoff)
			delay = cfg.ErrorBackoff
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}

	slog.Info("Shutting down")
	shutdown(history, 0)
}

// cycleDelay picks a random pause between cycles so request timing does
// not form a fixed pattern.
func cycleDelay(cfg *config.Config) time.Duration {
	spread := cfg.CycleDelayMax - cfg.CycleDelayMin
	if spread <= 0 {
		return cfg.CycleDelayMin
	}
	return cfg.CycleDelayMin + time.Duration(rand.Int63n(int64(spread)))
}

// shutdown persists the ledger before exiting so a signal never loses
// notification history.
func shutdown(history *ledger.Ledger, code int) {
	if err := history.Persist(); err != nil {
		slog.Error("Failed to persist notification history on shutdown", "error", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}
