// Package api provides the HTTP API for observing and steering the bot.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/talgya/auctionbot/internal/economy"
	"github.com/talgya/auctionbot/internal/engine"
	"github.com/talgya/auctionbot/internal/venue"
)

// Server serves the bot over HTTP.
type Server struct {
	Bot       *engine.Bot
	Eng       *engine.Engine
	Port      int
	AdminKey  string // Bearer token for POST endpoints. Empty = POST disabled.
	RateLimit int    // admin requests per minute per IP
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	limit := s.RateLimit
	if limit <= 0 {
		limit = 30
	}
	adminLimiter := NewRateLimiter(limit, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/venues", s.handleVenues)

	// Venue detail (GET) and venue admin actions (POST).
	mux.HandleFunc("/api/v1/venue/", s.handleVenueRoutes(adminLimiter))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(RateLimitMiddleware(adminLimiter, s.handleSpeed)))

	return corsMiddleware(mux)
}

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

// corsMiddleware adds CORS headers for allowed origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
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
				http.Error(w, "admin endpoints disabled (no AHBOT_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":    "ahbot",
		"bot":     s.Bot.Status(),
		"tick":    s.Eng.Tick(),
		"speed":   s.Eng.Speed(),
		"running": s.Eng.Running(),
	}
	writeJSON(w, status)
}

func (s *Server) handleVenues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Bot.Status().Venues)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

// handleVenueRoutes dispatches /api/v1/venue/:id (GET) and
// /api/v1/venue/:id/:action (POST).
func (s *Server) handleVenueRoutes(limiter *RateLimiter) http.HandlerFunc {
	actions := map[string]func(http.ResponseWriter, *http.Request, venue.ID){
		"expire":      s.handleExpire,
		"config":      s.handleConfig,
		"percentages": s.handlePercentages,
		"reload":      s.handleReload,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 4 || parts[3] == "" {
			http.Error(w, "missing venue id", http.StatusBadRequest)
			return
		}
		id, err := venue.Parse(parts[3])
		if err != nil {
			http.Error(w, "unknown venue", http.StatusNotFound)
			return
		}

		if len(parts) == 4 {
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			s.handleVenueDetail(w, r, id)
			return
		}

		action, ok := actions[parts[4]]
		if !ok || len(parts) > 5 {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.adminOnly(RateLimitMiddleware(limiter, func(w http.ResponseWriter, r *http.Request) {
			action(w, r, id)
		}))(w, r)
	}
}

func (s *Server) handleVenueDetail(w http.ResponseWriter, r *http.Request, id venue.ID) {
	p, err := s.Bot.Profile(id)
	if err != nil {
		writeError(w, err)
		return
	}
	var summary *engine.VenueStatus
	for _, vs := range s.Bot.Status().Venues {
		if vs.ID == uint32(id) {
			summary = &vs
			break
		}
	}
	writeJSON(w, map[string]any{
		"status":  summary,
		"profile": p,
	})
}

func (s *Server) handleExpire(w http.ResponseWriter, r *http.Request, id venue.ID) {
	var req struct {
		Class *uint8 `json:"class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var (
		n   int
		err error
	)
	if req.Class != nil {
		n, err = s.Bot.ExpireClass(r.Context(), id, economy.ItemClass(*req.Class))
	} else {
		n, err = s.Bot.ExpireAll(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"venue": id.String(), "expired": n})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request, id venue.ID) {
	var req struct {
		Field   string `json:"field"`
		Quality string `json:"quality,omitempty"`
		Value   uint32 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	c, err := venue.ParseChange(req.Field, req.Quality, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Bot.SetField(r.Context(), id, c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"venue": id.String(), "column": c.Column(), "value": c.Value})
}

func (s *Server) handlePercentages(w http.ResponseWriter, r *http.Request, id venue.ID) {
	var req struct {
		Percentages []uint32 `json:"percentages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(req.Percentages) != economy.TierCount {
		http.Error(w, fmt.Sprintf("expected %d percentages, got %d", economy.TierCount, len(req.Percentages)), http.StatusBadRequest)
		return
	}

	var pct [economy.TierCount]uint32
	copy(pct[:], req.Percentages)
	if err := s.Bot.SetPercentages(r.Context(), id, pct); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"venue": id.String(), "percentages": pct})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request, id venue.ID) {
	if err := s.Bot.Reload(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.Bot.Profile(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"venue": id.String(), "generation": p.Generation})
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, venue.ErrUnknownVenue), errors.Is(err, economy.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, venue.ErrUnknownField), errors.Is(err, venue.ErrInvalidValue),
		errors.Is(err, economy.ErrUnsupportedQuality):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("admin request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
