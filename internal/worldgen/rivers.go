package worldgen

import (
	"math"
	"sort"
)

// riverParams tunes the river trace heuristics. Defaults are calibrated
// for maps in the few-hundred-cells-per-side range.
type riverParams struct {
	coastChance       float64 // chance a single-strand river targets the coast instead of a lake
	coastSearchMax    int     // BFS radius when locating the nearest coast
	coastSeekDist     int     // Manhattan distance to coast that activates direct seeking
	coastSeekSteps    int     // step count that activates direct seeking
	coastBias         float64 // chance to follow the coast direction over the steepest drop
	mergeChance       float64 // chance to join an adjacent river in hills or grassland
	mergeChanceUpland float64 // chance to join a strongly favorable river elsewhere
	uphillJoinHills   float64 // uphill tolerance when joining a river in hills
	uphillJoinGrass   float64 // uphill tolerance when joining a river in grassland
	minHillsSteps     int     // steps spent in hills before a single strand may pool
	grassMeander      float64 // chance of an extra meander step on flat grassland
	fadeAfterSteps    int     // steps before a lake-bound river may peter out
	fadeChance        float64 // per-step chance of petering out once eligible
	stallLimit        int     // consecutive zero-progress steps before abandoning
}

func defaultRiverParams() riverParams {
	return riverParams{
		coastChance:       0.30,
		coastSearchMax:    500,
		coastSeekDist:     400,
		coastSeekSteps:    100,
		coastBias:         0.80,
		mergeChance:       0.70,
		mergeChanceUpland: 0.60,
		uphillJoinHills:   0.03,
		uphillJoinGrass:   0.05,
		minHillsSteps:     150,
		grassMeander:      0.30,
		fadeAfterSteps:    200,
		fadeChance:        0.02,
		stallLimit:        10,
	}
}

type traceGoal uint8

const (
	goalLake traceGoal = iota
	goalCoast
)

// The trace's coarse position in the elevation profile. Transitions are
// one-way (mountain, hills, grassland); the meander and merge rules differ
// per phase.
type tracePhase uint8

const (
	phaseMountain tracePhase = iota
	phaseHills
	phaseGrass
)

// riverTrace holds the state of one river being walked downhill.
type riverTrace struct {
	g *Generator
	n *waterNetwork

	x, y  int
	tribs int // merged source count carried by this strand

	goal           traceGoal
	coastTarget    cell
	hasCoastTarget bool
	coastSeeking   bool

	phase      tracePhase
	hillsSteps int
	grassSteps int

	lastDX, lastDY int
	hasLast        bool

	pathSet map[int]bool
	path    []int
}

// traceRiver walks one river from source downhill until it reaches the
// coast, pools into a lake, merges out, or gives up. Cells along the way
// are recorded into the shared network; unresolved endpoints are queued
// for lake creation.
func (g *Generator) traceRiver(n *waterNetwork, start cell) {
	tr := &riverTrace{
		g:       g,
		n:       n,
		x:       start.x,
		y:       start.y,
		tribs:   1,
		goal:    goalLake,
		pathSet: make(map[int]bool),
	}
	w := n.grid.Width

	idx := tr.y*w + tr.x
	n.riverFlow[idx]++
	if n.tributary[idx] < tr.tribs {
		n.tributary[idx] = tr.tribs
	}

	if g.rng.Float64() < g.riv.coastChance {
		tr.retargetCoast()
	}

	maxSteps := (n.grid.Width + n.grid.Height) * 3 / 2
	if maxSteps > 5000 {
		maxSteps = 5000
	}

	visited := make(map[int]bool)
	noProgress := 0
	termination := -1
	reachedCoast := false

steps:
	for step := 0; step < maxSteps; step++ {
		idx = tr.y*w + tr.x
		if visited[idx] {
			break
		}
		visited[idx] = true
		tr.path = append(tr.path, idx)
		tr.pathSet[idx] = true

		cur := n.elev.At(tr.x, tr.y)
		tr.updatePhase(cur)

		// Crossing a cell another trace already claimed promotes this
		// strand to a tributary; confluences always make for the sea.
		if tc := n.tributary[idx]; tc > tr.tribs {
			tr.tribs = tc
			if tr.tribs >= 2 && tr.goal != goalCoast {
				tr.retargetCoast()
			}
		}

		switch tr.goal {
		case goalCoast:
			if cur < n.t.ShallowWater && tr.countSeaNeighbors() >= 2 {
				reachedCoast = true
				break steps
			}
		case goalLake:
			if n.lakes[idx] {
				termination = idx
				break steps
			}
			if done, term := tr.tryPool(cur, step); done {
				termination = term
				break steps
			}
			if step > g.riv.fadeAfterSteps && g.rng.Float64() < g.riv.fadeChance {
				termination = idx
				break steps
			}
		}

		distToCoast := math.MaxInt32
		if tr.goal == goalCoast && tr.hasCoastTarget {
			distToCoast = absInt(tr.x-tr.coastTarget.x) + absInt(tr.y-tr.coastTarget.y)
			if distToCoast < g.riv.coastSeekDist || step > g.riv.coastSeekSteps {
				tr.coastSeeking = true
			}
		}

		dx, dy, ok := tr.chooseDir(cur, distToCoast)
		if !ok {
			termination = idx
			break
		}

		if tr.phase == phaseGrass && step > 5 && g.rng.Float64() < g.riv.grassMeander {
			if mdx, mdy, meandered := tr.grassMeanderDir(cur); meandered {
				dx, dy = mdx, mdy
			}
		}

		tr.lastDX, tr.lastDY = dx, dy
		tr.hasLast = true

		nx, ny := tr.x+dx, tr.y+dy
		if !n.grid.InBounds(nx, ny) {
			termination = idx
			break
		}
		tr.x, tr.y = nx, ny
		nidx := ny*w + nx

		// Entering another river's cell merges the strands.
		if tc, traced := n.tributary[nidx]; traced && !tr.pathSet[nidx] {
			n.tributary[nidx] = tc + tr.tribs
			tr.tribs = n.tributary[nidx]
			if tr.tribs >= 2 && tr.goal != goalCoast {
				tr.retargetCoast()
			}
		}

		if dx == 0 && dy == 0 {
			noProgress++
			if noProgress >= g.riv.stallLimit {
				termination = nidx
				break
			}
		} else {
			noProgress = 0
		}

		n.riverFlow[nidx]++
		if n.tributary[nidx] < tr.tribs {
			n.tributary[nidx] = tr.tribs
		}
	}

	if !reachedCoast && termination < 0 {
		termination = tr.y*w + tr.x
	}
	if !reachedCoast && termination >= 0 {
		n.terminations = append(n.terminations, termination)
	}
	n.addRiverPath(tr.path)
}

// retargetCoast switches the trace to the coast goal and locates the
// nearest shore from the current position.
func (tr *riverTrace) retargetCoast() {
	tr.goal = goalCoast
	tr.coastTarget = tr.n.nearestCoast(tr.x, tr.y, tr.g.riv.coastSearchMax)
	tr.hasCoastTarget = true
	tr.coastSeeking = false
}

func (tr *riverTrace) updatePhase(cur float64) {
	t := tr.n.t
	switch {
	case cur >= t.Grassland && cur < t.Hills:
		if tr.phase == phaseMountain {
			tr.phase = phaseHills
			tr.hillsSteps = 0
		} else if tr.phase == phaseHills {
			tr.hillsSteps++
		}
	case cur >= t.ShallowWater && cur < t.Grassland:
		if tr.phase != phaseGrass {
			tr.phase = phaseGrass
			tr.grassSteps = 0
		} else {
			tr.grassSteps++
		}
	}
}

func (tr *riverTrace) countSeaNeighbors() int {
	below := 0
	for _, d := range dirs8 {
		nx, ny := tr.x+d.dx, tr.y+d.dy
		if !tr.n.grid.InBounds(nx, ny) {
			continue
		}
		if tr.n.elev.At(nx, ny) < tr.n.t.ShallowWater {
			below++
		}
	}
	return below
}

// tryPool decides whether a lake-bound trace should stop here and pool.
// The cell must be a local depression, the trace must have run long
// enough, and the surrounding depression must be plausibly lake-sized
// with no mountain looming over it.
func (tr *riverTrace) tryPool(cur float64, step int) (bool, int) {
	n, t := tr.n, tr.n.t
	if step <= 30 {
		return false, 0
	}
	for _, d := range dirs8 {
		nx, ny := tr.x+d.dx, tr.y+d.dy
		if !n.grid.InBounds(nx, ny) {
			continue
		}
		if n.elev.At(nx, ny) < cur-0.01 {
			return false, 0 // water still has somewhere to go
		}
	}

	inHills := cur >= t.Grassland && cur < t.Hills
	inGrass := cur >= t.ShallowWater && cur < t.Grassland
	if inGrass {
		// On open grassland a depression is likely noise; keep flowing
		// and let the coast or the step cap end the river.
		return false, 0
	}

	if tr.tribs == 1 {
		if !inHills || tr.hillsSteps < tr.g.riv.minHillsSteps {
			return false, 0
		}
	} else if !inHills || cur >= t.Hills*0.9 {
		return false, 0
	}

	size, mountainNearby := tr.depressionExtent(cur)
	if mountainNearby || size < 10 || size > 200 {
		return false, 0
	}
	return true, tr.y*n.grid.Width + tr.x
}

// depressionExtent sizes the local depression: cells within a ±5 box whose
// elevation lies within 0.02 of the current cell. It also reports whether
// any cell in the box reaches the mountain band.
func (tr *riverTrace) depressionExtent(cur float64) (int, bool) {
	n := tr.n
	size := 0
	mountain := false
	for dy := -5; dy <= 5; dy++ {
		for dx := -5; dx <= 5; dx++ {
			nx, ny := tr.x+dx, tr.y+dy
			if !n.grid.InBounds(nx, ny) {
				continue
			}
			ne := n.elev.At(nx, ny)
			if ne >= n.t.Hills {
				mountain = true
			}
			if math.Abs(ne-cur) < 0.02 {
				size++
			}
		}
	}
	return size, mountain
}

type dirOption struct {
	dx, dy int
	slope  float64
	score  float64
}

// chooseDir picks the next step. In priority order: join a nearby river,
// head for the coast when seeking, weighted-random meander among downhill
// options, fall back to the precomputed flow direction, and finally crawl
// toward water when stranded near sea level.
func (tr *riverTrace) chooseDir(cur float64, distToCoast int) (int, int, bool) {
	n, g := tr.n, tr.g
	w := n.grid.Width
	t := n.t

	// A traced river among the 8 neighbors pulls this strand toward it.
	var nearRiver *cell
	nearRiverDist := 0
	for _, d := range dirs8 {
		nx, ny := tr.x+d.dx, tr.y+d.dy
		if !n.grid.InBounds(nx, ny) {
			continue
		}
		nidx := ny*w + nx
		if _, traced := n.tributary[nidx]; traced && !tr.pathSet[nidx] {
			dist := absInt(d.dx) + absInt(d.dy)
			if nearRiver == nil || dist < nearRiverDist {
				nearRiver = &cell{nx, ny}
				nearRiverDist = dist
			}
		}
	}

	var (
		valid []dirOption

		bestSlope   = 0.0
		bestDX      int
		bestDY      int
		hasBest     bool
		riverScore  = math.Inf(-1)
		riverDX     int
		riverDY     int
		hasRiverDir bool
		coastScore  = math.Inf(-1)
		coastDX     int
		coastDY     int
		hasCoastDir bool
	)

	for _, d := range dirs8 {
		nx, ny := tr.x+d.dx, tr.y+d.dy
		if !n.grid.InBounds(nx, ny) {
			continue
		}
		ne := n.elev.At(nx, ny)

		allowed := ne < cur
		if !allowed && nearRiver != nil {
			// Rivers may climb slightly to reach a neighbor river.
			switch tr.phase {
			case phaseHills:
				allowed = ne <= cur+g.riv.uphillJoinHills
			case phaseGrass:
				allowed = ne <= cur+g.riv.uphillJoinGrass
			}
		}

		if allowed {
			slope := (cur - ne) / d.dist
			valid = append(valid, dirOption{dx: d.dx, dy: d.dy, slope: slope})
			if slope > bestSlope {
				bestSlope = slope
				bestDX, bestDY = d.dx, d.dy
				hasBest = true
			}
			if nearRiver != nil {
				rd := absInt(nx-nearRiver.x) + absInt(ny-nearRiver.y)
				score := float64(nearRiverDist - rd)
				if ne <= cur {
					score += (cur - ne) * 5
				} else if tr.phase == phaseHills || tr.phase == phaseGrass {
					score += 2.0
				}
				if score > riverScore {
					riverScore = score
					riverDX, riverDY = d.dx, d.dy
					hasRiverDir = true
				}
			}
		}

		if tr.coastSeeking && tr.hasCoastTarget && ne <= cur {
			nd := absInt(nx-tr.coastTarget.x) + absInt(ny-tr.coastTarget.y)
			score := float64(distToCoast-nd) + (cur-ne)*10
			if score > coastScore {
				coastScore = score
				coastDX, coastDY = d.dx, d.dy
				hasCoastDir = true
			}
		}
	}

	switch {
	case hasRiverDir && (tr.phase == phaseHills || tr.phase == phaseGrass) && riverScore > 0:
		if !hasBest || g.rng.Float64() < g.riv.mergeChance {
			return riverDX, riverDY, true
		}
		return bestDX, bestDY, true

	case hasRiverDir && riverScore > 2:
		if !hasBest || g.rng.Float64() < g.riv.mergeChanceUpland {
			return riverDX, riverDY, true
		}
		return bestDX, bestDY, true

	case tr.goal == goalCoast && tr.coastSeeking && hasCoastDir:
		if !hasBest || coastScore > 0 {
			return coastDX, coastDY, true
		}
		if coastDX == bestDX && coastDY == bestDY {
			return coastDX, coastDY, true
		}
		if g.rng.Float64() < g.riv.coastBias {
			return coastDX, coastDY, true
		}
		return bestDX, bestDY, true

	case len(valid) > 0:
		return tr.meanderPick(valid, cur)
	}

	if di := n.flowDir[tr.y*w+tr.x]; di >= 0 {
		return dirs8[di].dx, dirs8[di].dy, true
	}

	// Stranded with no downhill option. Near sea level (or while coast
	// seeking) crawl toward the lowest neighbor, breaking ties toward
	// the coast target.
	if cur < t.ShallowWater*1.2 || tr.coastSeeking {
		bestE := cur
		bestCD := distToCoast
		found := false
		var fdx, fdy int
		for _, d := range dirs8 {
			nx, ny := tr.x+d.dx, tr.y+d.dy
			if !n.grid.InBounds(nx, ny) {
				continue
			}
			ne := n.elev.At(nx, ny)
			nd := math.MaxInt32
			if tr.hasCoastTarget {
				nd = absInt(nx-tr.coastTarget.x) + absInt(ny-tr.coastTarget.y)
			}
			if ne < bestE || (ne <= bestE+0.01 && nd < bestCD) {
				bestE, bestCD = ne, nd
				fdx, fdy = d.dx, d.dy
				found = true
			}
		}
		if found {
			return fdx, fdy, true
		}
	}
	return 0, 0, false
}

// meanderPick scores downhill options against the previous heading —
// perpendicular turns get large multipliers, straight-ahead a penalty —
// then draws from the top four, weighted by score. Steep choices are
// taken as-is; nearly flat draws fall back to the best-scored option.
func (tr *riverTrace) meanderPick(valid []dirOption, cur float64) (int, int, bool) {
	n, g := tr.n, tr.g

	for i := range valid {
		score := valid[i].slope

		// Long stretches in the hills favor directions that drop out of
		// the band, nudging the river down toward grassland.
		if tr.phase == phaseHills && tr.hillsSteps > 100 {
			nx, ny := tr.x+valid[i].dx, tr.y+valid[i].dy
			if n.grid.InBounds(nx, ny) {
				if ne := n.elev.At(nx, ny); ne < n.t.Grassland && ne < cur {
					score = valid[i].slope * 1.4
				}
			}
		}

		if tr.hasLast {
			dot := math.Abs(float64(valid[i].dx*tr.lastDX + valid[i].dy*tr.lastDY))
			switch {
			case dot < 0.3:
				score *= 3.0
			case dot < 0.6:
				score *= 2.0
			case dot < 0.8:
				score *= 1.4
			}
			if dot > 0.9 {
				score *= 0.5
			}
		}
		valid[i].score = score
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].score > valid[j].score })
	top := valid
	if len(top) > 4 {
		top = top[:4]
	}
	if len(top) == 1 {
		return top[0].dx, top[0].dy, true
	}

	total := 0.0
	for _, o := range top {
		total += o.score
	}
	r := g.rng.Float64() * total
	cum := 0.0
	for _, o := range top {
		cum += o.score
		if r <= cum {
			if o.slope > 0.005 {
				return o.dx, o.dy, true
			}
			break
		}
	}
	return top[0].dx, top[0].dy, true
}

// grassMeanderDir is an occasional stronger meander on flat grassland,
// where the terrain gives the weighted pick little to work with. It
// accepts slightly uphill neighbors and boosts turns harder.
func (tr *riverTrace) grassMeanderDir(cur float64) (int, int, bool) {
	n, g := tr.n, tr.g
	var opts []dirOption
	for _, d := range dirs8 {
		nx, ny := tr.x+d.dx, tr.y+d.dy
		if !n.grid.InBounds(nx, ny) {
			continue
		}
		ne := n.elev.At(nx, ny)
		if ne > cur+0.03 {
			continue
		}
		slope := (cur - ne) / d.dist
		if slope <= 0.005 {
			continue
		}
		boost := 1.0
		if tr.hasLast {
			dot := math.Abs(float64(d.dx*tr.lastDX + d.dy*tr.lastDY))
			switch {
			case dot < 0.2:
				boost = 4.0
			case dot < 0.5:
				boost = 2.5
			case dot < 0.7:
				boost = 1.8
			}
			if dot > 0.85 {
				boost = 0.2
			}
		}
		opts = append(opts, dirOption{dx: d.dx, dy: d.dy, slope: slope, score: slope * boost})
	}
	if len(opts) == 0 {
		return 0, 0, false
	}
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].score > opts[j].score })
	if len(opts) > 3 {
		opts = opts[:3]
	}
	if len(opts) == 1 {
		return opts[0].dx, opts[0].dy, true
	}
	total := 0.0
	for _, o := range opts {
		total += o.score
	}
	r := g.rng.Float64() * total
	cum := 0.0
	for _, o := range opts {
		cum += o.score
		if r <= cum {
			return o.dx, o.dy, true
		}
	}
	return opts[0].dx, opts[0].dy, true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
