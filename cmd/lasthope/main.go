// Command lasthope runs a Last Hope session behind the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Kalaith/last-hope/internal/api"
	"github.com/Kalaith/last-hope/internal/config"
	"github.com/Kalaith/last-hope/internal/engine"
	"github.com/Kalaith/last-hope/internal/meta"
	"github.com/Kalaith/last-hope/internal/persistence"
	"github.com/Kalaith/last-hope/internal/persistence/snapshot"
)

func main() {
	configPath := flag.String("config", "lasthope.yaml", "path to the YAML config")
	restore := flag.String("restore", "", "start from a snapshot file instead of the saved run")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	cfg.FromEnv()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)
	slog.Info("Last Hope starting", "config", *configPath)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		slog.Error("failed to create data dir", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.DBPath)

	progress, err := db.LoadProgress()
	if err != nil {
		slog.Error("failed to load progress", "error", err)
		os.Exit(1)
	}

	// ── Load or start the run ─────────────────────────────────────────
	st, err := loadRun(db, cfg, *restore, &progress)
	if err != nil {
		slog.Error("failed to prepare run", "error", err)
		os.Exit(1)
	}

	sim, err := engine.NewSimulation(st, engine.WithCooldown(cfg.Cooldown.Base, cfg.Cooldown.PerConsequence))
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("initial save failed", "error", err)
	}

	eng := engine.NewEngine(sim)
	eng.Interval = cfg.Game.DayInterval
	eng.SetSpeed(cfg.Game.Autoplay)

	hub := api.NewHub()
	eng.OnDay = hub.Broadcast
	eng.OnWeek = func(day int) {
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("weekly save failed", "day", day, "error", err)
		}
	}
	eng.OnEnd = func(rep engine.DayReport) {
		recordRun(db, sim, &progress)
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("final run save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("LASTHOPE_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Sim:         sim,
		Eng:         eng,
		DB:          db,
		Hub:         hub,
		Limiter:     api.NewRateLimiter(cfg.API.RateLimit, cfg.API.RateWindow),
		SnapshotDir: cfg.Storage.SnapshotDir,
		Port:        cfg.API.Port,
		AdminKey:    cfg.API.AdminKey,
		CORSOrigin:  cfg.API.CORSOrigin,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	status := sim.Status()
	fmt.Printf("\nLast Hope: day %d, %s of hope, soil %.0f%%.\n",
		status.Day, humanize.Ftoa(status.Resources.Hope), status.SoilHealth)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	if cfg.Game.Autoplay > 0 {
		fmt.Printf("Autoplay at %gx, one day every %s\n", cfg.Game.Autoplay, cfg.Game.DayInterval)
	} else {
		fmt.Println("Waiting for players... (Ctrl+C to stop)")
	}

	eng.Run(ctx)

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}
	if _, err := api.WriteSnapshot(cfg.Storage.SnapshotDir, sim, progress); err != nil {
		slog.Error("shutdown snapshot failed", "error", err)
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	fmt.Println("Session stopped. Run saved.")
}

// loadRun picks the starting state: a snapshot when asked, otherwise the
// saved run, otherwise a new game. A saved run that already ended is
// replaced by a new one.
func loadRun(db *persistence.DB, cfg *config.Config, restore string, progress *meta.Progress) (*engine.WorldState, error) {
	if restore != "" {
		snap, err := snapshot.Read(restore)
		if err != nil {
			return nil, err
		}
		st, p, err := snap.Decode()
		if err != nil {
			return nil, err
		}
		*progress = p
		if err := db.SaveProgress(p); err != nil {
			return nil, err
		}
		if err := db.ClearRun(); err != nil {
			return nil, err
		}
		slog.Info("run restored from snapshot", "path", restore, "day", st.Day, "saved_at", snap.Header.SavedAt)
		return st, nil
	}

	st, err := db.LoadState()
	switch {
	case err == nil && !st.Ended():
		slog.Info("saved run restored", "day", st.Day, "scene", st.Scene, "background", st.Background)
		return st, nil
	case err == nil:
		slog.Info("saved run already ended, starting a new one", "ending", st.Ending)
	case !errors.Is(err, persistence.ErrNoSave):
		return nil, err
	}

	if err := db.ClearRun(); err != nil {
		return nil, err
	}
	st, err = engine.NewGame(engine.GameConfig{
		Seed:          cfg.Game.Seed,
		Background:    cfg.Game.Background,
		SiteAmplitude: max(0, cfg.Game.SiteAmplitude),
		Progress:      progress,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("new run started",
		"seed", st.Seed,
		"background", st.Background,
		"soil", fmt.Sprintf("%.1f", st.Ecosystem.SoilHealth),
		"runs_before", progress.TotalRuns,
	)
	return st, nil
}

// recordRun files the finished run and applies whatever it unlocked.
func recordRun(db *persistence.DB, sim *engine.Simulation, progress *meta.Progress) {
	history, err := db.History()
	if err != nil {
		slog.Error("load history failed", "error", err)
	}
	rec := sim.RunRecord(time.Now())
	fresh := progress.CompleteRun(&rec, history)

	if err := db.SaveRun(rec); err != nil {
		slog.Error("save run failed", "error", err)
	}
	if err := db.SaveProgress(*progress); err != nil {
		slog.Error("save progress failed", "error", err)
	}

	slog.Info("run ended",
		"ending", rec.Ending,
		"days", rec.DaysSurvived,
		"run", humanize.Ordinal(progress.TotalRuns),
		"prestige", progress.PrestigeScore(),
	)
	for _, a := range fresh {
		slog.Info("achievement unlocked", "id", a.ID, "name", a.Name, "reward", a.Reward.Description)
	}
}
