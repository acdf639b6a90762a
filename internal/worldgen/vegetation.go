package worldgen

// Forest placement parameters. Forests cluster around freshwater: the
// noise threshold a cell must clear rises with its distance to the
// nearest river or lake, and beyond forestMaxDistance nothing grows.
const (
	forestNoiseOctaves     = 4
	forestNoisePersistence = 0.6
	forestNoiseScale       = 0.02

	freshwaterSearchLimit = 20
	forestMaxDistance     = 12

	// Offset applied to the world seed for the vegetation noise, so
	// forests do not mirror the elevation pattern.
	forestSeedOffset = 1000
)

// growVegetation turns grassland into forest and hills into forested
// hills near freshwater, gated by a separate noise field. Coastal salt
// water does not count; only rivers and lakes attract forests.
func (g *Generator) growVegetation(grid *Grid, elev *HeightField, water *waterBodies) {
	dist := freshwaterDistance(grid, water, freshwaterSearchLimit)
	noise := newVegetationNoise(g.seed + forestSeedOffset)
	t := g.thresholds

	// Forested hills stop short of the mountain approaches.
	hillCeiling := t.Grassland + 0.75*(t.Hills-t.Grassland)

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			c := grid.At(x, y)
			if c != Grassland && c != Hills {
				continue
			}
			d := dist[y*grid.Width+x]
			if d < 0 || d > forestMaxDistance {
				continue
			}
			v := octave(noise, float64(x), float64(y),
				forestNoiseOctaves, forestNoisePersistence, forestNoiseScale)
			v = (v + 1.0) / 2.0
			if v < forestThreshold(d) {
				continue
			}
			if c == Grassland {
				grid.Set(x, y, Forest)
			} else if elev.At(x, y) < hillCeiling {
				grid.Set(x, y, ForestedHill)
			}
		}
	}
}

// forestThreshold is the noise value a cell must reach for forest to take
// hold, by freshwater distance. Riverbanks forest readily; the fringe
// only where the noise peaks.
func forestThreshold(d int) float64 {
	switch {
	case d < 3:
		return max(0.15, 0.25-float64(3-d)*0.05)
	case d < 6:
		return 0.4 - float64(6-d)*0.05
	case d < 9:
		return 0.5 - float64(9-d)*0.03
	case d < 12:
		return 0.6 - float64(12-d)*0.03
	default:
		return 0.65
	}
}

// freshwaterDistance computes per-cell BFS distance to the nearest river
// or lake tile, capped at limit. Unreached cells hold -1.
func freshwaterDistance(grid *Grid, water *waterBodies, limit int) []int {
	w, h := grid.Width, grid.Height
	dist := make([]int, w*h)
	for i := range dist {
		dist[i] = -1
	}

	var queue []cell
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if water.rivers[idx] || water.lakes[idx] {
				dist[idx] = 0
				queue = append(queue, cell{x, y})
			}
		}
	}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		d := dist[c.y*w+c.x]
		if d >= limit {
			continue
		}
		for _, dd := range dirs8 {
			nx, ny := c.x+dd.dx, c.y+dd.dy
			if !grid.InBounds(nx, ny) {
				continue
			}
			nidx := ny*w + nx
			if dist[nidx] >= 0 {
				continue
			}
			dist[nidx] = d + 1
			queue = append(queue, cell{nx, ny})
		}
	}
	return dist
}
