package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/wildermap/internal/worldgen"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testWorld() *worldgen.World {
	grid := worldgen.NewGrid(8, 6)
	cats := []worldgen.Category{
		worldgen.DeepWater, worldgen.ShallowWater, worldgen.River,
		worldgen.Grassland, worldgen.Hills, worldgen.ForestedHill,
		worldgen.Forest, worldgen.Mountain,
	}
	for i := range grid.Cells {
		grid.Cells[i] = cats[i%len(cats)]
	}

	city := &worldgen.Settlement{ID: 0, Kind: worldgen.City, Name: "Tarnmouth", X: 1, Y: 1, VassalTo: -1, Vassals: []int{1}}
	town := &worldgen.Settlement{ID: 1, Kind: worldgen.Town, Name: "Ashford", X: 3, Y: 2, VassalTo: 0, Vassals: []int{2}}
	village := &worldgen.Settlement{
		ID: 2, Kind: worldgen.Village, Name: "Fenwick", X: 4, Y: 3,
		Resource: worldgen.ResourceLumber, VassalTo: 1,
	}

	return &worldgen.World{
		Grid:        grid,
		Settlements: []*worldgen.Settlement{city, town, village},
		Seed:        1234,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	want := testWorld()

	if err := db.SaveWorld(want, "testworld"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.LoadWorld()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Seed != want.Seed {
		t.Errorf("seed = %d, want %d", got.Seed, want.Seed)
	}
	if got.Grid.Width != want.Grid.Width || got.Grid.Height != want.Grid.Height {
		t.Fatalf("grid %dx%d, want %dx%d",
			got.Grid.Width, got.Grid.Height, want.Grid.Width, want.Grid.Height)
	}
	for i := range want.Grid.Cells {
		if got.Grid.Cells[i] != want.Grid.Cells[i] {
			t.Fatalf("cell %d = %s, want %s", i, got.Grid.Cells[i], want.Grid.Cells[i])
		}
	}

	if len(got.Settlements) != len(want.Settlements) {
		t.Fatalf("settlements = %d, want %d", len(got.Settlements), len(want.Settlements))
	}
	for i, ws := range want.Settlements {
		gs := got.Settlements[i]
		if gs.ID != ws.ID || gs.Kind != ws.Kind || gs.Name != ws.Name ||
			gs.X != ws.X || gs.Y != ws.Y || gs.Resource != ws.Resource ||
			gs.VassalTo != ws.VassalTo {
			t.Errorf("settlement %d = %+v, want %+v", i, gs, ws)
		}
		if len(gs.Vassals) != len(ws.Vassals) {
			t.Errorf("settlement %d vassals = %v, want %v", i, gs.Vassals, ws.Vassals)
			continue
		}
		for j := range ws.Vassals {
			if gs.Vassals[j] != ws.Vassals[j] {
				t.Errorf("settlement %d vassals = %v, want %v", i, gs.Vassals, ws.Vassals)
				break
			}
		}
	}
}

func TestSaveWorldReplaces(t *testing.T) {
	db := openTestDB(t)
	first := testWorld()
	if err := db.SaveWorld(first, "first"); err != nil {
		t.Fatalf("save first: %v", err)
	}
	firstID, err := db.GetMeta("world_id")
	if err != nil {
		t.Fatalf("meta: %v", err)
	}

	second := testWorld()
	second.Settlements = second.Settlements[:1]
	second.Seed = 99
	if err := db.SaveWorld(second, "second"); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := db.LoadWorld()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Seed != 99 {
		t.Errorf("seed = %d, want 99", got.Seed)
	}
	if len(got.Settlements) != 1 {
		t.Errorf("settlements = %d, want 1", len(got.Settlements))
	}

	secondID, err := db.GetMeta("world_id")
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if firstID == secondID {
		t.Error("world_id not refreshed on save")
	}
	if name, _ := db.GetMeta("name"); name != "second" {
		t.Errorf("name = %q, want %q", name, "second")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("note", "hello"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("note", "replaced"); err != nil {
		t.Fatalf("replace meta: %v", err)
	}
	got, err := db.GetMeta("note")
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if got != "replaced" {
		t.Errorf("meta = %q, want %q", got, "replaced")
	}
}
