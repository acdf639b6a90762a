package worldgen

import "testing"

func TestForestThresholdRisesWithDistance(t *testing.T) {
	prev := forestThreshold(0)
	for d := 1; d <= 13; d++ {
		cur := forestThreshold(d)
		if cur < prev {
			t.Errorf("threshold fell from %v to %v at distance %d", prev, cur, d)
		}
		prev = cur
	}
	if forestThreshold(0) >= forestThreshold(12) {
		t.Error("riverbank threshold not lower than fringe threshold")
	}
}

func TestFreshwaterDistance(t *testing.T) {
	grid := NewGrid(30, 30)
	water := &waterBodies{
		rivers: map[int]bool{15*30 + 15: true},
		lakes:  map[int]bool{},
	}
	dist := freshwaterDistance(grid, water, freshwaterSearchLimit)

	if got := dist[15*30+15]; got != 0 {
		t.Errorf("source distance = %d, want 0", got)
	}
	// Diagonal steps count as 1, so distance is the Chebyshev metric.
	if got := dist[10*30+10]; got != 5 {
		t.Errorf("distance at (10,10) = %d, want 5", got)
	}
	// Beyond the search limit the distance stays unset.
	if got := dist[0]; got != -1 {
		t.Errorf("distance at far corner = %d, want -1", got)
	}
}

func TestGrowVegetationOnlyNearFreshwater(t *testing.T) {
	g := New(Config{Width: 60, Height: 60, Seed: 11})
	g.thresholds = Thresholds{DeepWater: 0.1, ShallowWater: 0.2, Grassland: 0.5, Hills: 0.8}

	grid := NewGrid(60, 60)
	for i := range grid.Cells {
		grid.Cells[i] = Grassland
	}
	elev := NewHeightField(60, 60)
	for i := range elev.Values {
		elev.Values[i] = 0.35
	}

	// One river column down the middle.
	water := &waterBodies{rivers: map[int]bool{}, lakes: map[int]bool{}}
	for y := 0; y < 60; y++ {
		water.rivers[y*60+30] = true
	}

	g.growVegetation(grid, elev, water)

	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			if grid.At(x, y) != Forest {
				continue
			}
			if d := absInt(x - 30); d > forestMaxDistance {
				t.Errorf("forest at (%d,%d), distance %d from the river", x, y, d)
			}
		}
	}
}

func TestGrowVegetationHillCeiling(t *testing.T) {
	g := New(Config{Width: 40, Height: 40, Seed: 4})
	g.thresholds = Thresholds{DeepWater: 0.1, ShallowWater: 0.2, Grassland: 0.5, Hills: 0.8}

	grid := NewGrid(40, 40)
	elev := NewHeightField(40, 40)
	for i := range grid.Cells {
		grid.Cells[i] = Hills
		elev.Values[i] = 0.78 // above grassland + 0.75·(hills−grassland) = 0.725
	}
	water := &waterBodies{rivers: map[int]bool{20*40 + 20: true}, lakes: map[int]bool{}}

	g.growVegetation(grid, elev, water)

	for i, c := range grid.Cells {
		if c == ForestedHill {
			t.Fatalf("forested hill at index %d above the elevation ceiling", i)
		}
	}
}

func TestVegetationDeterminism(t *testing.T) {
	run := func() *Grid {
		g := New(Config{Width: 50, Height: 50, Seed: 21})
		g.thresholds = Thresholds{DeepWater: 0.1, ShallowWater: 0.2, Grassland: 0.5, Hills: 0.8}
		grid := NewGrid(50, 50)
		for i := range grid.Cells {
			grid.Cells[i] = Grassland
		}
		elev := NewHeightField(50, 50)
		for i := range elev.Values {
			elev.Values[i] = 0.3
		}
		water := &waterBodies{rivers: map[int]bool{25*50 + 25: true}, lakes: map[int]bool{}}
		g.growVegetation(grid, elev, water)
		return grid
	}

	a, b := run(), run()
	for i := range a.Cells {
		if a.Cells[i] != b.Cells[i] {
			t.Fatalf("vegetation diverged at index %d: %s vs %s", i, a.Cells[i], b.Cells[i])
		}
	}
}
