package worldgen

import "sort"

// Thresholds are the four elevation cut points separating terrain bands,
// in ascending order: below DeepWater is deep ocean, below ShallowWater is
// coastal water, below Grassland is open land, below Hills is upland, and
// everything above is mountain.
type Thresholds struct {
	DeepWater    float64
	ShallowWater float64
	Grassland    float64
	Hills        float64
}

// Percentiles used to derive the thresholds. Absolute cut points would make
// terrain proportions seed-dependent (an unlucky seed yields an all-ocean
// map); percentiles guarantee every band is populated.
const (
	pctDeepWater    = 0.40
	pctShallowWater = 0.45
	pctGrassland    = 0.85
	pctHills        = 0.97

	// Minimum spacing between consecutive thresholds, as a fraction of the
	// observed elevation range.
	minThresholdGap = 0.05
)

// computeThresholds derives the cut points from the elevation distribution
// and enforces minimum spacing, pushing later thresholds upward (clamped to
// the maximum observed elevation) when bands would collapse.
func computeThresholds(elev *HeightField) Thresholds {
	sorted := make([]float64, len(elev.Values))
	copy(sorted, elev.Values)
	sort.Float64s(sorted)

	total := len(sorted)
	minElev := sorted[0]
	maxElev := sorted[total-1]

	pick := func(pct float64) float64 {
		i := int(float64(total) * pct)
		if i >= total {
			i = total - 1
		}
		return sorted[i]
	}

	t := Thresholds{
		DeepWater:    pick(pctDeepWater),
		ShallowWater: pick(pctShallowWater),
		Grassland:    pick(pctGrassland),
		Hills:        pick(pctHills),
	}

	gap := (maxElev - minElev) * minThresholdGap
	if t.ShallowWater-t.DeepWater < gap {
		t.ShallowWater = min(t.DeepWater+gap, maxElev)
	}
	if t.Grassland-t.ShallowWater < gap*2 {
		t.Grassland = min(t.ShallowWater+gap*2, maxElev)
	}
	if t.Hills-t.Grassland < gap {
		t.Hills = min(t.Grassland+gap, maxElev)
	}

	// Clamp to a monotonically non-decreasing sequence within range.
	t.DeepWater = max(minElev, min(t.DeepWater, maxElev))
	t.ShallowWater = max(t.DeepWater, min(t.ShallowWater, maxElev))
	t.Grassland = max(t.ShallowWater, min(t.Grassland, maxElev))
	t.Hills = max(t.Grassland, min(t.Hills, maxElev))

	return t
}

// classify maps each elevation sample to the terrain band containing it.
func classify(elev *HeightField, t Thresholds) *Grid {
	grid := NewGrid(elev.Width, elev.Height)
	for y := 0; y < elev.Height; y++ {
		for x := 0; x < elev.Width; x++ {
			e := elev.At(x, y)
			var c Category
			switch {
			case e < t.DeepWater:
				c = DeepWater
			case e < t.ShallowWater:
				c = ShallowWater
			case e < t.Grassland:
				c = Grassland
			case e < t.Hills:
				c = Hills
			default:
				c = Mountain
			}
			grid.Set(x, y, c)
		}
	}
	return grid
}
