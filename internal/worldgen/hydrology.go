package worldgen

import "sort"

// Hydrology: rivers are traced cell-to-cell from upland sources toward the
// coast or a terminal lake basin, guided by a D8 flow field plus merging,
// meandering, and coast-seeking heuristics. Lakes are flood-filled from
// depressions and from the points where traces give up.

type cell struct {
	x, y int
}

// waterBodies is the hydrology result consumed by vegetation and
// settlement placement. Keys are flattened y*width+x indices.
type waterBodies struct {
	rivers map[int]bool
	lakes  map[int]bool
}

// waterNetwork accumulates state shared across all river traces.
type waterNetwork struct {
	grid *Grid
	elev *HeightField
	t    Thresholds

	flowDir []int8 // index into dirs8, -1 where no downhill neighbor exists
	accum   []int  // flow accumulation per cell

	riverFlow map[int]int // flow volume per traced cell
	tributary map[int]int // merged source-trace count per traced cell

	rivers     map[int]bool
	riverOrder []int // trace order, for deterministic stamping
	lakes      map[int]bool
	lakeOrder  []int // acceptance order, for deterministic stamping

	terminations []int // unresolved trace endpoints awaiting lake creation
	basinVisited map[int]bool
	lakeBudget   int // remaining global lake-tile allowance
}

const (
	maxLakeSize            = 5000
	minLakeSizeTermination = 5
	minLakeSizeScan        = 10
	lakeTileBudget         = 100000
)

func newWaterNetwork(grid *Grid, elev *HeightField, t Thresholds) *waterNetwork {
	return &waterNetwork{
		grid:         grid,
		elev:         elev,
		t:            t,
		riverFlow:    make(map[int]int),
		tributary:    make(map[int]int),
		rivers:       make(map[int]bool),
		lakes:        make(map[int]bool),
		basinVisited: make(map[int]bool),
		lakeBudget:   lakeTileBudget,
	}
}

// carveHydrology runs the full hydrology stage: flow field, mountain-fed
// traces, termination lakes, a second trace round from lake edges and
// hills, a map-wide depression scan, and finally stamping the results onto
// the terrain grid.
func (g *Generator) carveHydrology(grid *Grid, elev *HeightField) *waterBodies {
	n := newWaterNetwork(grid, elev, g.thresholds)

	g.progress(0.52, "computing flow directions")
	n.computeFlowDirections()

	requested := grid.Width * grid.Height / 2000
	if requested < 100 {
		requested = 100
	}
	sources := g.findRiverSources(n, requested)

	g.progress(0.55, "computing flow accumulation")
	n.computeFlowAccumulation(sources)

	g.progress(0.60, "tracing rivers")
	for _, s := range sources {
		g.traceRiver(n, s)
	}

	g.progress(0.65, "filling lakes at river terminations")
	g.createTerminationLakes(n)

	g.progress(0.68, "tracing rivers from lakes and hills")
	extra := g.findLakeSources(n)
	extra = append(extra, g.findHillsSources(n)...)
	for _, s := range extra {
		g.traceRiver(n, s)
	}
	g.createTerminationLakes(n)

	g.progress(0.72, "scanning for depressions")
	g.scanDepressions(n)

	g.progress(0.78, "stamping rivers and lakes")
	n.stampRivers()
	n.stampLakes()

	return &waterBodies{rivers: n.rivers, lakes: n.lakes}
}

// computeFlowDirections fills the D8 flow field: the steepest descending
// neighbor of each cell, with diagonal drops divided by √2.
func (n *waterNetwork) computeFlowDirections() {
	w, h := n.grid.Width, n.grid.Height
	n.flowDir = make([]int8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cur := n.elev.At(x, y)
			best := int8(-1)
			bestSlope := 0.0
			for i, d := range dirs8 {
				nx, ny := x+d.dx, y+d.dy
				if !n.grid.InBounds(nx, ny) {
					continue
				}
				ne := n.elev.At(nx, ny)
				if ne >= cur {
					continue
				}
				slope := (cur - ne) / d.dist
				if slope > bestSlope {
					bestSlope = slope
					best = int8(i)
				}
			}
			n.flowDir[y*w+x] = best
		}
	}
}

// computeFlowAccumulation traces each source strictly downhill along the
// flow field and counts how many source paths pass through each cell. The
// counts later decide which river segments are stamped wide.
func (n *waterNetwork) computeFlowAccumulation(sources []cell) {
	w, h := n.grid.Width, n.grid.Height
	n.accum = make([]int, w*h)
	for _, s := range sources {
		x, y := s.x, s.y
		visited := make(map[int]bool)
		var path []int
		for steps := 0; steps < w*h; steps++ {
			idx := y*w + x
			if visited[idx] {
				break
			}
			visited[idx] = true
			path = append(path, idx)
			di := n.flowDir[idx]
			if di < 0 {
				break
			}
			x += dirs8[di].dx
			y += dirs8[di].dy
			if x < 0 || x >= w || y < 0 || y >= h {
				break
			}
		}
		for _, idx := range path {
			n.accum[idx]++
		}
	}
}

// findRiverSources samples trace origins from the lowest 40% of
// mountain-band cells. Starting rivers below the highest peaks keeps them
// from all converging down the same few summits.
func (g *Generator) findRiverSources(n *waterNetwork, requested int) []cell {
	type peak struct {
		c cell
		e float64
	}
	var peaks []peak
	for y := 0; y < n.grid.Height; y++ {
		for x := 0; x < n.grid.Width; x++ {
			if e := n.elev.At(x, y); e > n.t.Hills {
				peaks = append(peaks, peak{cell{x, y}, e})
			}
		}
	}
	if len(peaks) == 0 {
		return nil
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].e < peaks[j].e })

	lowest := len(peaks) * 40 / 100
	if lowest < 1 {
		lowest = 1
	}
	coords := make([]cell, lowest)
	for i := 0; i < lowest; i++ {
		coords[i] = peaks[i].c
	}
	return g.sampleCells(coords, requested)
}

// findHillsSources samples additional trace origins from hill terrain.
func (g *Generator) findHillsSources(n *waterNetwork) []cell {
	var hills []cell
	for y := 0; y < n.grid.Height; y++ {
		for x := 0; x < n.grid.Width; x++ {
			e := n.elev.At(x, y)
			if e < n.t.Grassland || e >= n.t.Hills {
				continue
			}
			if c := n.grid.At(x, y); c == Hills || c == ForestedHill {
				hills = append(hills, cell{x, y})
			}
		}
	}
	requested := n.grid.Width * n.grid.Height / 4000
	if requested < 10 {
		requested = 10
	}
	return g.sampleCells(hills, requested)
}

// findLakeSources samples trace origins from the edges of lakes lying in
// the hills band, so upland lakes drain onward instead of sitting sealed.
func (g *Generator) findLakeSources(n *waterNetwork) []cell {
	var edges []cell
	for _, idx := range n.lakeOrder {
		x, y := idx%n.grid.Width, idx/n.grid.Width
		e := n.elev.At(x, y)
		if e < n.t.Grassland || e >= n.t.Hills {
			continue
		}
		for _, d := range dirs8 {
			nx, ny := x+d.dx, y+d.dy
			if !n.grid.InBounds(nx, ny) {
				continue
			}
			if n.lakes[ny*n.grid.Width+nx] {
				continue
			}
			// Outflow only makes sense over a rim, not down a cliff.
			if n.elev.At(nx, ny) >= e-0.05 {
				edges = append(edges, cell{x, y})
				break
			}
		}
	}
	requested := len(n.lakes) / 50
	if requested < 20 {
		requested = 20
	}
	return g.sampleCells(edges, requested)
}

// sampleCells picks up to requested cells without replacement.
func (g *Generator) sampleCells(coords []cell, requested int) []cell {
	if len(coords) == 0 {
		return nil
	}
	shuffled := make([]cell, len(coords))
	copy(shuffled, coords)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if requested < len(shuffled) {
		shuffled = shuffled[:requested]
	}
	return shuffled
}

// nearestCoast runs a bounded BFS from (x, y) and returns the first cell
// below the shallow-water threshold, or the start cell if none is found
// within maxSearch steps.
func (n *waterNetwork) nearestCoast(x, y, maxSearch int) cell {
	w := n.grid.Width
	type node struct {
		c    cell
		dist int
	}
	queue := []node{{cell{x, y}, 0}}
	visited := map[int]bool{y*w + x: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.dist > maxSearch {
			break
		}
		if n.elev.At(cur.c.x, cur.c.y) < n.t.ShallowWater {
			return cur.c
		}
		for _, d := range dirs8 {
			nx, ny := cur.c.x+d.dx, cur.c.y+d.dy
			if !n.grid.InBounds(nx, ny) {
				continue
			}
			nidx := ny*w + nx
			if visited[nidx] {
				continue
			}
			visited[nidx] = true
			queue = append(queue, node{cell{nx, ny}, cur.dist + 1})
		}
	}
	return cell{x, y}
}

// addRiverPath records a trace's cells into the global river set.
func (n *waterNetwork) addRiverPath(path []int) {
	for _, idx := range path {
		if !n.rivers[idx] {
			n.rivers[idx] = true
			n.riverOrder = append(n.riverOrder, idx)
		}
	}
}

// stampRivers writes traced cells onto the terrain grid as River, or
// ShallowWater once below the coast threshold. Cells with flow
// accumulation (or flow volume) of 3+ widen onto their neighbors to mark
// major rivers. Deep water is never overwritten.
func (n *waterNetwork) stampRivers() {
	w := n.grid.Width
	for _, idx := range n.riverOrder {
		x, y := idx%w, idx/w
		if n.grid.At(x, y) == DeepWater {
			continue
		}
		if n.accum[idx] >= 3 || n.riverFlow[idx] >= 3 {
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if !n.grid.InBounds(nx, ny) {
						continue
					}
					if n.grid.At(nx, ny) == DeepWater {
						continue
					}
					n.grid.Set(nx, ny, n.riverCategory(nx, ny))
				}
			}
		} else {
			n.grid.Set(x, y, n.riverCategory(x, y))
		}
	}
}

func (n *waterNetwork) riverCategory(x, y int) Category {
	if n.elev.At(x, y) < n.t.ShallowWater {
		return ShallowWater
	}
	return River
}

// stampLakes writes accepted basins onto the grid as still shallow water.
// Mountain, deep water, and already-stamped river cells are left alone.
func (n *waterNetwork) stampLakes() {
	w := n.grid.Width
	for _, idx := range n.lakeOrder {
		x, y := idx%w, idx/w
		switch n.grid.At(x, y) {
		case DeepWater, Mountain, River:
			continue
		}
		if n.elev.At(x, y) < n.t.Hills*0.9 {
			n.grid.Set(x, y, ShallowWater)
		}
	}
}
