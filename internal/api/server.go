// Package api provides the HTTP API for playing and observing a run.
// GET endpoints are read-only. Player POST endpoints are rate limited per IP.
// Admin POST endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Kalaith/last-hope/internal/construction"
	"github.com/Kalaith/last-hope/internal/ecosystem"
	"github.com/Kalaith/last-hope/internal/engine"
	"github.com/Kalaith/last-hope/internal/meta"
	"github.com/Kalaith/last-hope/internal/narrative"
	"github.com/Kalaith/last-hope/internal/persistence"
	"github.com/Kalaith/last-hope/internal/persistence/snapshot"
	"github.com/Kalaith/last-hope/internal/research"
)

// Server serves one session over HTTP.
type Server struct {
	Sim *engine.Simulation
	// Optional collaborators. A nil Eng disables the speed endpoint, a nil DB
	// disables run history and saves, a nil Hub disables the stream and a nil
	// Limiter disables rate limiting.
	Eng     *engine.Engine
	DB      *persistence.DB
	Hub     *Hub
	Limiter *RateLimiter

	SnapshotDir string // where admin snapshots are written
	Port        int
	AdminKey    string // Bearer token for admin POST endpoints. Empty = admin disabled.
	CORSOrigin  string // "*" or a comma-separated list of origins

	srv *http.Server
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Observation.
	mux.HandleFunc("/api/v1/status", get(s.handleStatus))
	mux.HandleFunc("/api/v1/state", get(s.handleState))
	mux.HandleFunc("/api/v1/pressures", get(s.handlePressures))
	mux.HandleFunc("/api/v1/structures", get(s.handleStructures))
	mux.HandleFunc("/api/v1/research", s.handleResearch)
	mux.HandleFunc("/api/v1/runs", get(s.handleRuns))
	mux.HandleFunc("/api/v1/scene", get(s.handleScene))
	mux.HandleFunc("/api/v1/events", get(s.handleEvents))
	mux.HandleFunc("/api/v1/stream", get(s.handleStream))

	// Play.
	mux.HandleFunc("/api/v1/choice", s.player(s.handleChoice))
	mux.HandleFunc("/api/v1/day", s.player(s.handleDay))
	mux.HandleFunc("/api/v1/plant", s.player(s.handlePlant))
	mux.HandleFunc("/api/v1/harvest", s.player(s.handleHarvest))
	mux.HandleFunc("/api/v1/build", s.player(s.handleBuild))
	mux.HandleFunc("/api/v1/maintain", s.player(s.handleMaintain))
	mux.HandleFunc("/api/v1/resolve", s.player(s.handleResolve))
	mux.HandleFunc("/api/v1/talk", s.player(s.handleTalk))

	// Admin.
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(s.CORSOrigin, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "stream", s.Hub != nil)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for those in flight.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for the configured origins.
func corsMiddleware(origins string, next http.Handler) http.Handler {
	allowed := map[string]bool{}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func get(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

// player wraps a POST-only endpoint with the rate limiter.
func (s *Server) player(next http.HandlerFunc) http.HandlerFunc {
	limited := RateLimitMiddleware(s.Limiter, next)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		limited(w, r)
	}
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				writeError(w, http.StatusForbidden, "admin endpoints disabled (no admin key set)")
				return
			}
			if !s.checkBearerToken(r) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Status())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.State())
}

func (s *Server) handlePressures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Pressures())
}

func (s *Server) handleStructures(w http.ResponseWriter, r *http.Request) {
	built := s.Sim.Structures()
	writeJSON(w, map[string]any{
		"structures": built.Structures,
		"projects":   built.Projects,
		"available":  s.Sim.AvailableStructures(),
	})
}

// handleResearch serves the tree on GET and starts a topic on POST.
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.Sim.ResearchTree())
	case http.MethodPost:
		s.player(s.handleStartResearch)(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "database not available")
		return
	}
	runs, err := s.DB.Runs(queryLimit(r, 20, 200))
	if err != nil {
		slog.Error("load runs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "load runs failed")
		return
	}
	progress, err := s.DB.LoadProgress()
	if err != nil {
		slog.Error("load progress failed", "error", err)
		writeError(w, http.StatusInternalServerError, "load progress failed")
		return
	}

	var achievements []meta.Achievement
	for _, a := range meta.Achievements() {
		if progress.Unlocked[a.ID] {
			achievements = append(achievements, a)
		}
	}
	writeJSON(w, map[string]any{
		"runs":         runs,
		"totalRuns":    progress.TotalRuns,
		"bestRun":      progress.BestRun,
		"prestige":     progress.PrestigeScore(),
		"completion":   progress.CompletionPercent(),
		"achievements": achievements,
	})
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	p, err := s.Sim.Prompt()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.Sim.RecentEvents(queryLimit(r, 50, engine.MaxEvents))

	if category := r.URL.Query().Get("category"); category != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	writeJSON(w, events)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		writeError(w, http.StatusServiceUnavailable, "engine not running")
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			writeError(w, http.StatusBadRequest, "speed must be 0-1000")
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// handleSnapshot saves the run to the database and writes a portable export.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	progress := meta.NewProgress()
	if s.DB != nil {
		if err := s.DB.SaveWorldState(s.Sim); err != nil {
			slog.Error("snapshot save failed", "error", err)
			writeError(w, http.StatusInternalServerError, "snapshot failed")
			return
		}
		p, err := s.DB.LoadProgress()
		if err != nil {
			slog.Error("snapshot progress failed", "error", err)
			writeError(w, http.StatusInternalServerError, "snapshot failed")
			return
		}
		progress = p
	}

	resp := map[string]any{"day": s.Sim.Day(), "message": "snapshot saved"}
	if s.SnapshotDir != "" {
		path, err := WriteSnapshot(s.SnapshotDir, s.Sim, progress)
		if err != nil {
			slog.Error("snapshot export failed", "error", err)
			writeError(w, http.StatusInternalServerError, "snapshot export failed")
			return
		}
		resp["path"] = path
	}
	writeJSON(w, resp)
}

// WriteSnapshot exports the session into dir and returns the file path.
func WriteSnapshot(dir string, sim *engine.Simulation, progress meta.Progress) (string, error) {
	snap, err := snapshot.New(sim.Snapshot(), progress, time.Now())
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, snapshot.FileName(snap.Header))
	if err := snapshot.Write(path, snap); err != nil {
		return "", err
	}
	slog.Info("snapshot written", "path", path, "day", snap.Header.Day)
	return path, nil
}

// statusFor maps an engine rejection to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrOnCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, engine.ErrUnknownNPC),
		errors.Is(err, engine.ErrUnknownStory),
		errors.Is(err, engine.ErrUnknownOption),
		errors.Is(err, narrative.ErrUnknownChoice),
		errors.Is(err, narrative.ErrUnknownScene),
		errors.Is(err, ecosystem.ErrUnknownSpecies),
		errors.Is(err, construction.ErrUnknownStructure),
		errors.Is(err, construction.ErrNoStructure),
		errors.Is(err, research.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrRunEnded),
		errors.Is(err, engine.ErrRequirementsUnmet),
		errors.Is(err, engine.ErrNothingToHarvest),
		errors.Is(err, engine.ErrNoSeeds),
		errors.Is(err, ecosystem.ErrSoilTooPoor),
		errors.Is(err, ecosystem.ErrNeedsKnowledge),
		errors.Is(err, construction.ErrInvalidLevel),
		errors.Is(err, construction.ErrLocked),
		errors.Is(err, construction.ErrAlreadyBuilt),
		errors.Is(err, construction.ErrUnderConstruction),
		errors.Is(err, construction.ErrUnaffordable),
		errors.Is(err, research.ErrAlreadyResearched),
		errors.Is(err, research.ErrPrerequisites),
		errors.Is(err, research.ErrInsufficientKnowing),
		errors.Is(err, research.ErrResearchInProgress):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeError(w, code, "internal error")
		return
	}
	if code == http.StatusTooManyRequests {
		secs := math.Ceil(s.Sim.CooldownRemaining().Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(int(max(secs, 1))))
	}
	writeError(w, code, err.Error())
}

func queryLimit(r *http.Request, def, ceiling int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= ceiling {
			return n
		}
	}
	return def
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSONStatus(w, code, map[string]string{"error": msg})
}
