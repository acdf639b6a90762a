package worldgen

import "testing"

// slopeNetwork builds a 20×20 field descending from east to west, with
// sea below x=3.
func slopeNetwork() *waterNetwork {
	grid := NewGrid(20, 20)
	for i := range grid.Cells {
		grid.Cells[i] = Grassland
	}
	elev := NewHeightField(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			elev.Set(x, y, float64(x)*0.05)
		}
	}
	t := Thresholds{DeepWater: 0.10, ShallowWater: 0.15, Grassland: 0.60, Hills: 0.85}
	return newWaterNetwork(grid, elev, t)
}

func TestComputeFlowDirectionsPointDownhill(t *testing.T) {
	n := slopeNetwork()
	n.computeFlowDirections()

	// Interior cells on a west-descending ramp flow due west.
	for y := 1; y < 19; y++ {
		for x := 1; x < 19; x++ {
			di := n.flowDir[y*20+x]
			if di < 0 {
				t.Fatalf("(%d,%d): no flow direction on a slope", x, y)
			}
			d := dirs8[di]
			if d.dx != -1 || d.dy != 0 {
				t.Errorf("(%d,%d): flow (%d,%d), want (-1,0)", x, y, d.dx, d.dy)
			}
		}
	}

	// The western edge has no downhill neighbor.
	for y := 0; y < 20; y++ {
		if di := n.flowDir[y*20]; di >= 0 {
			t.Errorf("(0,%d): flow direction %d on the low edge, want none", y, di)
		}
	}
}

func TestComputeFlowAccumulation(t *testing.T) {
	n := slopeNetwork()
	n.computeFlowDirections()
	sources := []cell{{19, 5}, {19, 6}, {15, 5}}
	n.computeFlowAccumulation(sources)

	// Both row-5 sources pass through (10, 5).
	if got := n.accum[5*20+10]; got != 2 {
		t.Errorf("accumulation at (10,5) = %d, want 2", got)
	}
	if got := n.accum[6*20+10]; got != 1 {
		t.Errorf("accumulation at (10,6) = %d, want 1", got)
	}
	if got := n.accum[5*20+17]; got != 1 {
		t.Errorf("accumulation at (17,5) = %d, want 1", got)
	}
}

func TestNearestCoastFindsSea(t *testing.T) {
	n := slopeNetwork()
	c := n.nearestCoast(10, 10, 500)
	if n.elev.At(c.x, c.y) >= n.t.ShallowWater {
		t.Errorf("nearest coast (%d,%d) at elevation %v, want below %v",
			c.x, c.y, n.elev.At(c.x, c.y), n.t.ShallowWater)
	}
}

func TestNearestCoastBounded(t *testing.T) {
	grid := NewGrid(10, 10)
	elev := NewHeightField(10, 10)
	for i := range elev.Values {
		elev.Values[i] = 0.5 // no sea anywhere
	}
	n := newWaterNetwork(grid, elev, Thresholds{0.1, 0.15, 0.6, 0.85})
	c := n.nearestCoast(4, 4, 500)
	if c.x != 4 || c.y != 4 {
		t.Errorf("landlocked search returned (%d,%d), want the start cell", c.x, c.y)
	}
}

func TestTraceRiverReachesWater(t *testing.T) {
	n := slopeNetwork()
	n.computeFlowDirections()
	n.accum = make([]int, 20*20)
	g := New(Config{Width: 20, Height: 20, Seed: 3})

	g.traceRiver(n, cell{18, 10})

	if len(n.riverOrder) == 0 {
		t.Fatal("trace recorded no river cells")
	}
	// On a clean slope to the sea the river must make substantial
	// westward progress from its source.
	minX := 20
	for _, idx := range n.riverOrder {
		if x := idx % 20; x < minX {
			minX = x
		}
	}
	if minX > 5 {
		t.Errorf("river stopped at x=%d, expected it to approach the coast", minX)
	}
}

func TestSampleCellsDeterministic(t *testing.T) {
	coords := make([]cell, 100)
	for i := range coords {
		coords[i] = cell{i % 10, i / 10}
	}
	a := New(Config{Seed: 9}).sampleCells(coords, 10)
	b := New(Config{Seed: 9}).sampleCells(coords, 10)
	if len(a) != 10 || len(b) != 10 {
		t.Fatalf("sample sizes %d, %d, want 10", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample diverged at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestStampRiversWidensMajorSegments(t *testing.T) {
	n := slopeNetwork()
	n.accum = make([]int, 20*20)
	idx := 10*20 + 10
	n.accum[idx] = 3
	n.addRiverPath([]int{idx})

	n.stampRivers()

	// The cell and its 8 neighbors are river (elevation 0.5, above the
	// coast threshold).
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if got := n.grid.At(10+dx, 10+dy); got != River {
				t.Errorf("(%d,%d): got %s, want river", 10+dx, 10+dy, got)
			}
		}
	}
	if got := n.grid.At(8, 10); got == River {
		t.Error("widening spread beyond the 8-neighborhood")
	}
}

func TestStampRiversCoastalCellsBecomeShallow(t *testing.T) {
	n := slopeNetwork()
	n.accum = make([]int, 20*20)
	idx := 10*20 + 2 // elevation 0.10, below the shallow threshold
	n.addRiverPath([]int{idx})

	n.stampRivers()
	if got := n.grid.At(2, 10); got != ShallowWater {
		t.Errorf("river mouth: got %s, want shallow_water", got)
	}
}
