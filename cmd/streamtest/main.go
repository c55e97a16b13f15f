// streamtest connects to the Paradex WebSocket and dumps channel frames
// to the console.
// Usage: go run ./cmd/streamtest --channels trades,bbo --markets ETH-USD-PERP
//
// Optional environment variable:
//
//	PARADEX_JWT - bearer JWT for private channels
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/iurii2002/paradex-go/internal/channel"
	"github.com/iurii2002/paradex-go/internal/config"
	"github.com/iurii2002/paradex-go/internal/stream"
)

func main() {
	environment := flag.String("env", "testnet", "environment (testnet, prod, nightly)")
	channels := flag.String("channels", "trades", "comma-separated channel names")
	markets := flag.String("markets", "ETH-USD-PERP", "comma-separated markets for parameterized channels")
	program := flag.String("program", "", "program for points_data")
	verbose := flag.Bool("verbose", false, "print full payload JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	wsURL := config.WSURLFor(*environment)
	token := os.Getenv("PARADEX_JWT")
	logger.Info("connecting", "url", wsURL, "authenticated", token != "")

	var dispatched atomic.Int64

	cfg := stream.DefaultConfig()
	cfg.URL = wsURL
	cfg.Token = token
	cfg.Logger = logger
	cfg.OnReconnect = func(c *stream.Client) {
		logger.Info("reconnected", "stats", c.Stats())
	}

	client := stream.New(cfg)
	defer client.Close()

	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}

	print := func(msg stream.Message) {
		dispatched.Add(1)
		if *verbose {
			data, _ := json.MarshalIndent(json.RawMessage(msg.Data), "", "  ")
			fmt.Printf("[%s] %s\n", msg.Channel, data)
		} else {
			fmt.Printf("[%s] %d bytes\n", msg.Channel, len(msg.Data))
		}
	}

	for _, name := range strings.Split(*channels, ",") {
		name = strings.TrimSpace(name)
		fam, ok := channel.FromName(name)
		if !ok {
			logger.Error("unknown channel", "name", name)
			os.Exit(1)
		}

		if _, err := fam.Resolve(nil); err == nil {
			id, err := client.Subscribe(fam, nil, print)
			if err != nil {
				logger.Error("subscribe failed", "channel", name, "error", err)
				os.Exit(1)
			}
			logger.Info("subscribed", "channel", name, "id", id)
			continue
		}

		for _, market := range strings.Split(*markets, ",") {
			params := channel.Params{"market": strings.TrimSpace(market)}
			if *program != "" {
				params["program"] = *program
			}
			id, err := client.Subscribe(fam, params, print)
			if err != nil {
				logger.Error("subscribe failed", "channel", name, "market", market, "error", err)
				os.Exit(1)
			}
			logger.Info("subscribed", "channel", name, "market", market, "id", id)
		}
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := client.Stats()
				logger.Info("stats",
					"ready", client.IsReady(),
					"received", stats.Received,
					"dispatched", stats.Dispatched,
					"printed", dispatched.Load(),
					"pongs", stats.Pongs,
					"reconnects", stats.Reconnects,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutdown complete")
}
