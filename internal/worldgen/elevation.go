package worldgen

import "math"

// Elevation synthesis parameters. The small scale yields large coherent
// landmasses; the shaping exponent below 1.0 compresses the extremes so
// mid-range terrain (grassland, hills) dominates.
const (
	elevationOctaves     = 8
	elevationPersistence = 0.7
	elevationScale       = 0.002
	elevationCurve       = 0.85
)

// synthesizeElevation builds the height field from layered simplex noise,
// remapped to [0, 1] and passed through the shaping curve.
func (g *Generator) synthesizeElevation() *HeightField {
	noise := newElevationNoise(g.seed)
	elev := NewHeightField(g.cfg.Width, g.cfg.Height)

	for y := 0; y < g.cfg.Height; y++ {
		for x := 0; x < g.cfg.Width; x++ {
			v := octave(noise, float64(x), float64(y),
				elevationOctaves, elevationPersistence, elevationScale)
			e := (v + 1.0) / 2.0
			e = math.Pow(e, elevationCurve)
			elev.Set(x, y, e)
		}
	}
	return elev
}

// Border reinforcement parameters: a band along the north and south edges
// gets an elevation boost with half-sine falloff, guaranteeing an
// impassable frame regardless of noise outcome.
const (
	borderWidth    = 50
	borderMaxBoost = 0.5
)

// reinforceBorders raises terrain near the top/bottom edges and
// reclassifies affected cells against the existing thresholds. The height
// field itself is left untouched; only the terrain grid changes.
func (g *Generator) reinforceBorders(grid *Grid, elev *HeightField) {
	t := g.thresholds
	for y := 0; y < grid.Height; y++ {
		edgeDist := y
		if d := grid.Height - 1 - y; d < edgeDist {
			edgeDist = d
		}
		if edgeDist >= borderWidth {
			continue
		}
		frac := float64(edgeDist) / float64(borderWidth)
		boost := borderMaxBoost * (1.0 - math.Sin(frac*math.Pi/2))

		for x := 0; x < grid.Width; x++ {
			raised := elev.At(x, y) + boost
			switch {
			case raised >= t.Hills:
				grid.Set(x, y, Mountain)
			case raised >= t.Grassland:
				grid.Set(x, y, Hills)
			case raised >= t.ShallowWater:
				// Only former water cells are lifted onto land; cells that
				// were already land keep whatever terrain they carry.
				if elev.At(x, y) < t.ShallowWater {
					grid.Set(x, y, Grassland)
				}
			}
		}
	}
}
