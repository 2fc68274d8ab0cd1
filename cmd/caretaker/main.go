// Command caretaker plays a Last Hope run on its own. It observes the run,
// picks one action by fixed rules, and acts via the player API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Kalaith/last-hope/internal/caretaker"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("LASTHOPE_API_URL", "http://localhost:8080")
	memoryPath := envOrDefault("CARETAKER_MEMORY", "caretaker_memory.json")
	intervalSec := envIntOrDefault("CARETAKER_INTERVAL", 5)
	interval := time.Duration(intervalSec) * time.Second

	slog.Info("Last Hope caretaker starting",
		"api_url", apiURL,
		"interval", interval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("waiting for lasthope API...")
	if !waitForAPI(ctx, apiURL) {
		os.Exit(1)
	}

	c := caretaker.New(apiURL, memoryPath)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		d, err := c.Cycle(ctx)
		switch {
		case err != nil:
			slog.Error("caretaker cycle failed", "error", err)
		case d.Action == caretaker.ActionNone:
			slog.Info("run is over, caretaker done", "reason", d.Rationale)
			fmt.Print(c.Memory.Summary(5))
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			slog.Info("received signal, shutting down")
			fmt.Println("Caretaker stopped.")
			return
		}
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Gives up after 5 minutes.
func waitForAPI(ctx context.Context, apiURL string) bool {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("lasthope API is ready")
				return true
			}
		}
		if time.Now().After(deadline) {
			slog.Error("lasthope API did not become ready within 5 minutes")
			return false
		}
		slog.Info("lasthope not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
