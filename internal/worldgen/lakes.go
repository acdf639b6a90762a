package worldgen

// isDepression reports whether no neighbor of (x, y) drops meaningfully
// below the cell's elevation.
func (n *waterNetwork) isDepression(x, y int, cur float64) bool {
	for _, d := range dirs8 {
		nx, ny := x+d.dx, y+d.dy
		if !n.grid.InBounds(nx, ny) {
			continue
		}
		if n.elev.At(nx, ny) < cur-0.01 {
			return false
		}
	}
	return true
}

// fillDepression flood-fills the basin around (x, y): cells reachable
// through neighbors no higher than the start elevation plus a small rim
// tolerance. Mountain terrain and the mountain elevation band bound the
// fill. Visited cells are shared across fills so basins never overlap.
func (n *waterNetwork) fillDepression(x, y int, visited map[int]bool) []int {
	w := n.grid.Width
	start := n.elev.At(x, y)

	var basin []int
	queue := []cell{{x, y}}
	visited[y*w+x] = true

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if n.elev.At(c.x, c.y) >= n.t.Hills || n.grid.At(c.x, c.y) == Mountain {
			continue
		}
		basin = append(basin, c.y*w+c.x)

		for _, d := range dirs8 {
			nx, ny := c.x+d.dx, c.y+d.dy
			if !n.grid.InBounds(nx, ny) {
				continue
			}
			nidx := ny*w + nx
			if visited[nidx] {
				continue
			}
			if n.elev.At(nx, ny) > start+0.02 {
				continue
			}
			visited[nidx] = true
			queue = append(queue, cell{nx, ny})
		}
	}
	return basin
}

func (n *waterNetwork) addLake(basin []int) {
	for _, idx := range basin {
		if !n.lakes[idx] {
			n.lakes[idx] = true
			n.lakeOrder = append(n.lakeOrder, idx)
		}
	}
	n.lakeBudget -= len(basin)
}

// createTerminationLakes converts queued trace endpoints into lakes where
// the endpoint sits in a genuine depression on pooling-friendly terrain.
// The queue is consumed; later trace rounds refill it.
func (g *Generator) createTerminationLakes(n *waterNetwork) {
	w := n.grid.Width
	terms := n.terminations
	n.terminations = nil

	for _, idx := range terms {
		if n.lakeBudget <= 0 {
			break
		}
		if n.basinVisited[idx] {
			continue
		}
		x, y := idx%w, idx/w
		cur := n.elev.At(x, y)
		if cur >= n.t.Hills*0.9 {
			continue
		}
		switch n.grid.At(x, y) {
		case Grassland, Hills, Forest, ForestedHill:
		default:
			continue
		}
		if !n.isDepression(x, y, cur) {
			continue
		}
		basin := n.fillDepression(x, y, n.basinVisited)
		if len(basin) < minLakeSizeTermination || len(basin) > maxLakeSize {
			continue
		}
		if len(basin) > n.lakeBudget {
			continue
		}
		n.addLake(basin)
	}
}

// Probability that a qualifying depression found by the map-wide scan
// becomes a lake. Upland depressions pool more often than lowland ones.
const (
	lakeChanceHills   = 0.25
	lakeChanceLowland = 0.08
)

// scanDepressions sweeps the whole map for depressions untouched by any
// river and turns a random fraction of them into lakes, so regions far
// from every trace still get standing water.
func (g *Generator) scanDepressions(n *waterNetwork) {
	w, h := n.grid.Width, n.grid.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if n.lakeBudget <= 0 {
				return
			}
			idx := y*w + x
			if n.basinVisited[idx] || n.rivers[idx] {
				continue
			}
			cur := n.elev.At(x, y)
			if cur < n.t.DeepWater || cur >= n.t.Hills*0.9 {
				continue
			}
			if !n.isDepression(x, y, cur) {
				continue
			}
			mountainAdjacent := false
			for _, d := range dirs8 {
				nx, ny := x+d.dx, y+d.dy
				if n.grid.InBounds(nx, ny) && n.grid.At(nx, ny) == Mountain {
					mountainAdjacent = true
					break
				}
			}
			if mountainAdjacent {
				continue
			}

			chance := lakeChanceLowland
			if cur > n.t.Grassland && cur < n.t.Hills*0.85 {
				chance = lakeChanceHills
			}
			if g.rng.Float64() >= chance {
				continue
			}

			basin := n.fillDepression(x, y, n.basinVisited)
			if len(basin) < minLakeSizeScan || len(basin) > maxLakeSize {
				continue
			}
			if len(basin) > n.lakeBudget {
				continue
			}
			n.addLake(basin)
		}
	}
}
