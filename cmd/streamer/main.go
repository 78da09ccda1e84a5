// streamer subscribes to Upbit market data channels and processes the
// event stream. Public channels print quotes; private channels (myOrder,
// myAsset) persist fills and balances to PostgreSQL.
//
// Usage: go run ./cmd/streamer --config configs/streamer.local.yaml \
//	--markets KRW-BTC,KRW-ETH --channels ticker,trade
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/djdlzl/crypto-trading/internal/auth"
	"github.com/djdlzl/crypto-trading/internal/config"
	"github.com/djdlzl/crypto-trading/internal/connection"
	"github.com/djdlzl/crypto-trading/internal/database"
	"github.com/djdlzl/crypto-trading/internal/store"
	"github.com/djdlzl/crypto-trading/internal/stream"
	"github.com/djdlzl/crypto-trading/internal/subscription"
	"github.com/djdlzl/crypto-trading/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/streamer.local.yaml", "path to config file")
	markets := flag.String("markets", "KRW-BTC", "comma-separated market codes")
	channels := flag.String("channels", "ticker,trade", "comma-separated channel types")
	healthPort := flag.Int("health-port", 8080, "health endpoint port")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting streamer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	subs, err := parseChannels(*channels)
	if err != nil {
		logger.Error("invalid channel list", "error", err)
		os.Exit(1)
	}
	codes := splitCSV(*markets)
	if len(codes) == 0 {
		logger.Error("no markets given")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool, logger)
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	// Auth: tokens are minted lazily, only when a private channel needs
	// the authenticated handshake.
	signer := auth.NewSigner(cfg.Upbit.AccessKey, cfg.Upbit.SecretKey)
	tokens := auth.NewCache(signer, st, cfg.Upbit.TokenRefreshInterval, logger)

	registry := subscription.NewRegistry()
	manager := connection.NewManager(connection.ManagerConfig{
		WSURL:        cfg.Upbit.WSURL,
		PingTimeout:  cfg.Stream.PingTimeout,
		WriteTimeout: cfg.Stream.WriteTimeout,
		BufferSize:   cfg.Stream.QueueSize,
	}, registry, tokens, logger)

	handler := &eventHandler{store: st, logger: logger}

	streamer := stream.NewStreamer(stream.Config{
		QueueSize: cfg.Stream.QueueSize,
		Receiver: stream.ReceiverConfig{
			ConnectRetryWait: cfg.Stream.ConnectRetryWait,
			ReadRetryWait:    cfg.Stream.ReadRetryWait,
		},
	}, manager, handler.handle, logger)

	for _, ch := range subs {
		if err := streamer.Subscribe(ctx, ch, codes...); err != nil {
			logger.Error("subscribe failed", "channel", ch, "error", err)
			os.Exit(1)
		}
	}

	if err := streamer.Start(ctx); err != nil {
		logger.Error("failed to start streamer", "error", err)
		os.Exit(1)
	}

	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *healthPort),
		Handler: createHealthHandler(pool, streamer, registry),
	}
	go func() {
		logger.Info("starting health server", "port", *healthPort)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("streamer running",
		"markets", codes,
		"channels", *channels,
		"health_url", fmt.Sprintf("http://localhost:%d/health", *healthPort),
	)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	healthServer.Shutdown(shutdownCtx)
	if err := streamer.Stop(shutdownCtx); err != nil {
		logger.Error("streamer stop error", "error", err)
	}

	logger.Info("streamer stopped")
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseChannels(s string) ([]subscription.Channel, error) {
	var out []subscription.Channel
	for _, name := range splitCSV(s) {
		ch := subscription.Channel(name)
		if !ch.Valid() {
			return nil, fmt.Errorf("unknown channel %q", name)
		}
		out = append(out, ch)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no channels given")
	}
	return out, nil
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *pgxpool.Pool, streamer *stream.Streamer, registry *subscription.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		state := streamer.State()
		health.Components["connection"] = state.String()
		if state != connection.Connected {
			health.Status = "degraded"
		}
		health.Components["subscriptions"] = registry.Len()

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(registry.Snapshot())
	})

	return mux
}
