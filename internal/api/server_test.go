package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/talgya/wildermap/internal/worldgen"
)

func testServer() *Server {
	grid := worldgen.NewGrid(4, 3)
	for i := range grid.Cells {
		grid.Cells[i] = worldgen.Grassland
	}
	grid.Set(0, 0, worldgen.DeepWater)
	grid.Set(1, 0, worldgen.ShallowWater)

	town := &worldgen.Settlement{ID: 0, Kind: worldgen.Town, Name: "Stonewick", X: 2, Y: 1, VassalTo: -1, Vassals: []int{1}}
	village := &worldgen.Settlement{
		ID: 1, Kind: worldgen.Village, Name: "Meredale", X: 3, Y: 1,
		Resource: worldgen.ResourceWater, VassalTo: 0,
	}

	return &Server{
		World: &worldgen.World{
			Grid:        grid,
			Settlements: []*worldgen.Settlement{town, village},
			Seed:        7,
		},
		Name: "testworld",
		Port: 0,
	}
}

func getJSON(t *testing.T, handler http.HandlerFunc, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("GET %s: content type %q", path, ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
	return body
}

func TestHandleStatus(t *testing.T) {
	s := testServer()
	body := getJSON(t, s.handleStatus, "/api/v1/status")

	if body["name"] != "testworld" {
		t.Errorf("name = %v", body["name"])
	}
	if body["width"].(float64) != 4 || body["height"].(float64) != 3 {
		t.Errorf("dimensions = %v x %v", body["width"], body["height"])
	}
	if body["towns"].(float64) != 1 || body["villages"].(float64) != 1 {
		t.Errorf("settlement counts = towns %v, villages %v", body["towns"], body["villages"])
	}

	terrain := body["terrain"].(map[string]any)
	if terrain["grassland"].(float64) != 10 {
		t.Errorf("grassland count = %v, want 10", terrain["grassland"])
	}
}

func TestHandleMap(t *testing.T) {
	s := testServer()
	body := getJSON(t, s.handleMap, "/api/v1/map")

	rows := body["rows"].([]any)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	first := rows[0].(string)
	fields := strings.Fields(first)
	if len(fields) != 4 {
		t.Fatalf("row 0 has %d cells, want 4", len(fields))
	}
	if fields[0] != "deep_water" || fields[1] != "shallow_water" || fields[2] != "grassland" {
		t.Errorf("row 0 = %q", first)
	}
}

func TestHandleSettlements(t *testing.T) {
	s := testServer()
	body := getJSON(t, s.handleSettlements, "/api/v1/settlements")

	entries := body["settlements"].([]any)
	if len(entries) != 2 {
		t.Fatalf("settlements = %d, want 2", len(entries))
	}

	town := entries[0].(map[string]any)
	if town["kind"] != "town" || town["name"] != "Stonewick" {
		t.Errorf("town entry = %v", town)
	}
	if _, present := town["vassal_to"]; present {
		t.Error("independent town serialized a vassal_to field")
	}

	village := entries[1].(map[string]any)
	if village["kind"] != "village" || village["resource"] != "water" {
		t.Errorf("village entry = %v", village)
	}
	if village["vassal_to"].(float64) != 0 {
		t.Errorf("village vassal_to = %v, want 0", village["vassal_to"])
	}
}

func TestCORSMiddleware(t *testing.T) {
	s := testServer()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	handler := corsMiddleware(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow-origin for unknown origin: %q", got)
	}
}
