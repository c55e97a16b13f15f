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
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iurii2002/paradex-go/internal/api"
	"github.com/iurii2002/paradex-go/internal/channel"
	"github.com/iurii2002/paradex-go/internal/config"
	"github.com/iurii2002/paradex-go/internal/database"
	"github.com/iurii2002/paradex-go/internal/recorder"
	"github.com/iurii2002/paradex-go/internal/stream"
	"github.com/iurii2002/paradex-go/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/recorder.yaml", "path to config file")
	healthPort := flag.Int("health-port", 8080, "health endpoint port")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting recorder",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"environment", cfg.Environment,
		"ws_url", cfg.API.WSURL,
	)

	// Create context with cancellation
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

	// Connect to database
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

	logger.Info("database connected")

	// Create API client and verify the environment is reachable
	apiClient := api.NewClient(
		cfg.API.RestURL,
		cfg.API.Token,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	sysCfg, err := apiClient.GetSystemConfig(ctx)
	if err != nil {
		logger.Error("failed to get system config", "error", err)
		os.Exit(1)
	}
	logger.Info("exchange reachable", "starknet_chain_id", sysCfg.StarknetChainID)

	// Start the batch writer
	rec := recorder.New(recorder.Config{
		BatchSize:     cfg.Recorder.BatchSize,
		FlushInterval: cfg.Recorder.FlushInterval,
	}, pool, logger)
	if err := rec.Start(ctx); err != nil {
		logger.Error("failed to start recorder", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		rec.Stop(stopCtx)
	}()

	// Create the WebSocket client
	client := stream.New(stream.Config{
		URL:              cfg.API.WSURL,
		Token:            cfg.API.Token,
		PingInterval:     cfg.Stream.PingInterval,
		WriteTimeout:     cfg.Stream.WriteTimeout,
		HandshakeTimeout: cfg.Stream.HandshakeTimeout,
		Reconnect: stream.ReconnectPolicy{
			Wait:        cfg.Stream.ReconnectWait,
			MaxWait:     cfg.Stream.ReconnectMaxWait,
			Multiplier:  cfg.Stream.ReconnectMultiplier,
			MaxAttempts: cfg.Stream.ReconnectMaxAttempts,
		},
		OnReconnect: func(c *stream.Client) {
			logger.Info("stream reconnected", "stats", c.Stats())
		},
		Logger: logger,
	})
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect stream", "error", err)
		os.Exit(1)
	}

	// Subscribe every configured channel to the recorder
	subscribed, err := subscribeChannels(client, rec, cfg.Recorder.Channels, logger)
	if err != nil {
		logger.Error("failed to subscribe", "error", err)
		os.Exit(1)
	}
	logger.Info("subscriptions established", "count", subscribed)

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *healthPort),
		Handler: createHealthHandler(pool, client, rec),
	}
	go func() {
		logger.Info("starting health server", "port", *healthPort)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("recorder running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", *healthPort),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("recorder stopped")
}

// subscribeChannels registers the recorder callback on every configured
// channel, fanned out per market for parameterized families.
func subscribeChannels(client *stream.Client, rec *recorder.Recorder, channels []config.ChannelConfig, logger *slog.Logger) (int, error) {
	count := 0
	for _, cc := range channels {
		fam, ok := channel.FromName(cc.Name)
		if !ok {
			return count, fmt.Errorf("unknown channel %q", cc.Name)
		}

		// Singletons subscribe once without parameters.
		if _, err := fam.Resolve(nil); err == nil {
			id, err := client.Subscribe(fam, nil, rec.Callback())
			if err != nil {
				return count, fmt.Errorf("subscribe %s: %w", cc.Name, err)
			}
			logger.Debug("subscribed", "channel", cc.Name, "id", id)
			count++
			continue
		}

		for _, market := range cc.Markets {
			params := channel.Params{"market": market}
			if cc.Program != "" {
				params["program"] = cc.Program
			}
			id, err := client.Subscribe(fam, params, rec.Callback())
			if err != nil {
				return count, fmt.Errorf("subscribe %s %s: %w", cc.Name, market, err)
			}
			logger.Debug("subscribed", "channel", cc.Name, "market", market, "id", id)
			count++
		}
	}
	return count, nil
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *pgxpool.Pool, client *stream.Client, rec *recorder.Recorder) http.Handler {
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

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		// Check stream
		streamStats := client.Stats()
		health.Components["stream"] = map[string]interface{}{
			"ready":      client.IsReady(),
			"received":   streamStats.Received,
			"dispatched": streamStats.Dispatched,
			"reconnects": streamStats.Reconnects,
		}
		if !client.IsReady() {
			health.Status = "degraded"
		}

		// Recorder metrics
		recStats := rec.Stats()
		health.Components["recorder"] = map[string]interface{}{
			"events":  recStats.Events,
			"inserts": recStats.Inserts,
			"errors":  recStats.Errors,
			"flushes": recStats.Flushes,
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
