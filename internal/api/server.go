// Package api serves a generated world over HTTP. All endpoints are GET
// and read-only; the world is immutable once generated.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/talgya/wildermap/internal/worldgen"
)

// Server serves one world over HTTP.
type Server struct {
	World *worldgen.World
	Name  string
	Port  int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/settlements", s.handleSettlements)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list of allowed origins; localhost
// dev servers are always allowed.
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
		if origin := r.Header.Get("Origin"); allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	census := s.World.Grid.Census()
	terrain := make(map[string]int, len(census))
	for c, n := range census {
		terrain[c.String()] = n
	}

	var villages, towns, cities int
	for _, st := range s.World.Settlements {
		switch st.Kind {
		case worldgen.Village:
			villages++
		case worldgen.Town:
			towns++
		case worldgen.City:
			cities++
		}
	}

	writeJSON(w, map[string]any{
		"name":     s.Name,
		"width":    s.World.Grid.Width,
		"height":   s.World.Grid.Height,
		"seed":     s.World.Seed,
		"terrain":  terrain,
		"villages": villages,
		"towns":    towns,
		"cities":   cities,
	})
}

// handleMap returns the full terrain grid, one space-separated row of
// category ids per map row.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	grid := s.World.Grid
	rows := make([]string, grid.Height)
	ids := make([]string, grid.Width)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			ids[x] = grid.At(x, y).String()
		}
		rows[y] = strings.Join(ids, " ")
	}

	writeJSON(w, map[string]any{
		"width":  grid.Width,
		"height": grid.Height,
		"rows":   rows,
	})
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	type settlementEntry struct {
		ID       int    `json:"id"`
		Kind     string `json:"kind"`
		Name     string `json:"name"`
		X        int    `json:"x"`
		Y        int    `json:"y"`
		Resource string `json:"resource,omitempty"`
		VassalTo *int   `json:"vassal_to,omitempty"`
		Vassals  []int  `json:"vassals,omitempty"`
	}

	entries := make([]settlementEntry, 0, len(s.World.Settlements))
	for _, st := range s.World.Settlements {
		entry := settlementEntry{
			ID:       st.ID,
			Kind:     st.Kind.String(),
			Name:     st.Name,
			X:        st.X,
			Y:        st.Y,
			Resource: string(st.Resource),
			Vassals:  st.Vassals,
		}
		if st.VassalTo >= 0 {
			v := st.VassalTo
			entry.VassalTo = &v
		}
		entries = append(entries, entry)
	}

	writeJSON(w, map[string]any{"settlements": entries})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
