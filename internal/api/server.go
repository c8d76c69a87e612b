// Package api provides the HTTP API for observing the simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hexscent/internal/agents"
	"github.com/talgya/hexscent/internal/engine"
	"github.com/talgya/hexscent/internal/journal"
	"github.com/talgya/hexscent/internal/world"
)

const maxAdvance = 1000

// Server serves the simulation over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Journal  *journal.DB // Optional; history endpoints return 503 without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Admin writes per IP per minute; 0 uses the default.
	AdminRate int

	// Active websocket connection count (atomic).
	wsConns int32
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	rate := s.AdminRate
	if rate <= 0 {
		rate = 60
	}
	quota := newAdminQuota(rate, time.Minute)
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return s.adminOnly(limitAdmin(quota, h))
	}

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMapRoutes)
	mux.HandleFunc("/api/v1/map/", s.handleMapRoutes)
	mux.HandleFunc("/api/v1/hit", s.handleHit)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgent)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/stats/history", s.handleStatsHistory)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/ws", s.handleWS)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", admin(s.handleSpeed))
	mux.HandleFunc("/api/v1/spawn", admin(postOnly(s.handleSpawn)))
	mux.HandleFunc("/api/v1/activate", admin(postOnly(s.handleActivate)))
	mux.HandleFunc("/api/v1/advance", admin(postOnly(s.handleAdvance)))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
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
				http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
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

func postOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.Snapshot()
	writeJSON(w, map[string]any{
		"name":       "hexscent",
		"tick":       stats.Tick,
		"speed":      s.Eng.Speed(),
		"running":    s.Eng.Running(),
		"radius":     s.Sim.WorldMap.Radius,
		"cells":      s.Sim.WorldMap.HexCount(),
		"population": stats.Population,
		"states":     stats.States,
		"deaths":     stats.Deaths,
	})
}

// handleMapRoutes dispatches between bulk map (GET /api/v1/map) and hex detail (GET /api/v1/map/:q/:r).
func (s *Server) handleMapRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/map")
	if path == "" || path == "/" {
		s.handleBulkMap(w, r)
		return
	}
	s.handleHexDetail(w, r)
}

// handleBulkMap returns every cell for a renderer.
func (s *Server) handleBulkMap(w http.ResponseWriter, r *http.Request) {
	type hexEntry struct {
		Q         int                              `json:"q"`
		R         int                              `json:"r"`
		Terrain   string                           `json:"terrain"`
		Elevation float64                          `json:"elevation"`
		Center    world.Point                      `json:"center"`
		Corners   [world.NumDirections]world.Point `json:"corners"`
		Scents    int                              `json:"scents"`
	}

	m := s.Sim.WorldMap
	hexes := make([]hexEntry, 0, m.HexCount())
	for _, c := range m.Cells() {
		hexes = append(hexes, hexEntry{
			Q:         c.Coord.Q,
			R:         c.Coord.R,
			Terrain:   world.TerrainName(c.Terrain),
			Elevation: c.Elevation,
			Center:    s.Sim.CellCenter(c),
			Corners:   s.Sim.PolygonCorners(c),
			Scents:    len(s.Sim.ScentsOf(c)),
		})
	}

	writeJSON(w, map[string]any{
		"radius": m.Radius,
		"layout": s.Sim.Layout,
		"hexes":  hexes,
	})
}

func (s *Server) handleHexDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/map/:q/:r → parts[0]="" [1]="api" [2]="v1" [3]="map" [4]=q [5]=r
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/map/:q/:r", http.StatusBadRequest)
		return
	}
	q, err1 := strconv.Atoi(parts[4])
	rr, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}

	cell, ok := s.Sim.Cell(world.HexCoord{Q: q, R: rr})
	if !ok {
		http.Error(w, "hex not found", http.StatusNotFound)
		return
	}
	writeJSON(w, s.cellDetail(cell))
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	x, err1 := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, err2 := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err1 != nil || err2 != nil {
		http.Error(w, "usage: /api/v1/hit?x=&y=", http.StatusBadRequest)
		return
	}
	cell, ok := s.Sim.CellAt(world.Point{X: x, Y: y})
	if !ok {
		http.Error(w, "no cell at point", http.StatusNotFound)
		return
	}
	writeJSON(w, s.cellDetail(cell))
}

func (s *Server) cellDetail(c *world.Cell) map[string]any {
	neighbors := make(map[string]world.HexCoord)
	for d, n := range s.Sim.Neighbors(c) {
		neighbors[strconv.Itoa(int(d))] = n.Coord
	}

	var here []engine.AgentView
	for _, a := range s.Sim.ListAgents() {
		if a.Position == c.Coord {
			here = append(here, a)
		}
	}

	return map[string]any{
		"q":         c.Coord.Q,
		"r":         c.Coord.R,
		"s":         c.Coord.S(),
		"terrain":   world.TerrainName(c.Terrain),
		"elevation": c.Elevation,
		"center":    s.Sim.CellCenter(c),
		"corners":   s.Sim.PolygonCorners(c),
		"neighbors": neighbors,
		"scents":    s.Sim.ScentsOf(c),
		"emission":  s.Sim.EmissionOf(c),
		"agents":    here,
	}
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	list := s.Sim.ListAgents()
	if state := strings.ToUpper(r.URL.Query().Get("state")); state != "" {
		filtered := list[:0]
		for _, a := range list {
			if a.State == state {
				filtered = append(filtered, a)
			}
		}
		list = filtered
	}
	writeJSON(w, list)
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing agent id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	view, ok := s.Sim.Agent(agents.AgentID(id))
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Sim.RecentEvents(limit)
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

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal not available", http.StatusServiceUnavailable)
		return
	}
	rows, err := s.Journal.StatsHistory()
	if err != nil {
		slog.Error("stats history query failed", "error", err)
		// Empty array rather than an error; the table may not have data yet.
		writeJSON(w, []journal.StatsRow{})
		return
	}
	if rows == nil {
		rows = []journal.StatsRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal not available", http.StatusServiceUnavailable)
		return
	}
	runs, err := s.Journal.Runs()
	if err != nil {
		slog.Error("runs query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []journal.RunInfo{}
	}
	writeJSON(w, runs)
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

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Q    *int   `json:"q"`
		R    *int   `json:"r"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var (
		a   *agents.Agent
		err error
	)
	switch {
	case req.Q == nil && req.R == nil:
		a, err = s.Sim.SpawnRandom(req.Name)
	case req.Q != nil && req.R != nil:
		a, err = s.Sim.SpawnAt(req.Name, world.HexCoord{Q: *req.Q, R: *req.R})
	default:
		http.Error(w, "q and r must be given together", http.StatusBadRequest)
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, engine.ErrNoSuchCell):
			status = http.StatusNotFound
		case errors.Is(err, engine.ErrDuplicateAgent):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	slog.Info("agent spawned via API", "id", a.ID, "name", a.Name, "at", a.Position)
	view, _ := s.Sim.Agent(a.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, view)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID  *uint64 `json:"id"`
		All bool    `json:"all"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if req.All {
		writeJSON(w, map[string]int{"activated": s.Sim.ActivateAll()})
		return
	}
	if req.ID == nil {
		http.Error(w, "id or all required", http.StatusBadRequest)
		return
	}
	woke, err := s.Sim.Activate(agents.AgentID(*req.ID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"activated": woke})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		N int `json:"n"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.N < 1 || req.N > maxAdvance {
		http.Error(w, fmt.Sprintf("n must be 1-%d", maxAdvance), http.StatusBadRequest)
		return
	}

	s.Sim.AdvanceTicks(req.N)
	s.Eng.SetTick(s.Sim.CurrentTick())
	slog.Info("advanced via API", "ticks", req.N, "tick", s.Sim.CurrentTick())
	writeJSON(w, s.Sim.Snapshot())
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
