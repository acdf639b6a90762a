package worldgen

import "sort"

// SettlementKind distinguishes the three tiers of the settlement
// hierarchy: villages serve a town, towns may serve a city.
type SettlementKind uint8

const (
	Village SettlementKind = iota
	Town
	City
)

func (k SettlementKind) String() string {
	switch k {
	case Village:
		return "village"
	case Town:
		return "town"
	case City:
		return "city"
	}
	return "unknown"
}

// KindFromString is the inverse of SettlementKind.String.
func KindFromString(s string) (SettlementKind, bool) {
	switch s {
	case "village":
		return Village, true
	case "town":
		return Town, true
	case "city":
		return City, true
	}
	return 0, false
}

// Resource names what a village was founded to exploit. Towns and cities
// carry ResourceNone.
type Resource string

const (
	ResourceNone        Resource = ""
	ResourceWater       Resource = "water"
	ResourceAgriculture Resource = "agriculture"
	ResourceMining      Resource = "mining"
	ResourceLumber      Resource = "lumber"
)

// Settlement is one placed settlement. IDs index into the World's
// settlement slice; VassalTo is -1 for independent settlements.
type Settlement struct {
	ID       int
	Kind     SettlementKind
	Name     string
	X, Y     int
	Resource Resource
	VassalTo int
	Vassals  []int
}

// Placement parameters. Distances are Manhattan except town spacing,
// which is Euclidean via the spatial index.
const (
	townTarget    = 60
	townSpacing   = 50
	resourceRange = 30 // town eligibility: ore and timber within this range
	villageRange  = 30 // villages settle within this range of their town
	cityRange     = 200
	cityMinTowns  = 3
)

// placeSettlements runs the three placement phases: towns on coastal
// grassland with ore and timber in reach, four resource villages around
// each town, and cities claiming clusters of independent towns. Placement
// is best-effort; crowded or resource-poor maps simply yield fewer
// settlements.
func (g *Generator) placeSettlements(grid *Grid, water *waterBodies) []*Settlement {
	w, h := grid.Width, grid.Height

	waterSet := make([]bool, w*h)
	for i, c := range grid.Cells {
		if c == ShallowWater || c == River {
			waterSet[i] = true
		}
	}
	for idx := range water.lakes {
		waterSet[idx] = true
	}

	// Shoreline grassland is the only town and city ground.
	var coastal []cell
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if grid.At(x, y) != Grassland {
				continue
			}
			for _, d := range dirs8 {
				nx, ny := x+d.dx, y+d.dy
				if grid.InBounds(nx, ny) && waterSet[ny*w+nx] {
					coastal = append(coastal, cell{x, y})
					break
				}
			}
		}
	}

	var out []*Settlement
	occupied := make(map[int]bool)
	usedNames := make(map[string]bool)
	spacing := newSpacingIndex(townSpacing)

	place := func(kind SettlementKind, c cell, res Resource, vassalTo int) *Settlement {
		s := &Settlement{
			ID:       len(out),
			Kind:     kind,
			Name:     g.settlementName(usedNames),
			X:        c.x,
			Y:        c.y,
			Resource: res,
			VassalTo: vassalTo,
		}
		out = append(out, s)
		occupied[c.y*w+c.x] = true
		return s
	}

	// Phase 1: towns.
	var towns []*Settlement
	for _, c := range g.sampleCells(coastal, len(coastal)) {
		if len(towns) >= townTarget {
			break
		}
		if occupied[c.y*w+c.x] || !spacing.clear(c) {
			continue
		}
		if !hasTerrainNear(grid, c, resourceRange, func(tc Category) bool { return tc == Hills }) {
			continue
		}
		if !hasTerrainNear(grid, c, resourceRange, func(tc Category) bool {
			return tc == Forest || tc == ForestedHill
		}) {
			continue
		}
		towns = append(towns, place(Town, c, ResourceNone, -1))
		spacing.add(c)
	}

	// Phase 2: one village per resource around each town.
	resources := []Resource{ResourceWater, ResourceAgriculture, ResourceMining, ResourceLumber}
	for _, town := range towns {
		for _, res := range resources {
			c, ok := findVillageSite(grid, waterSet, occupied, cell{town.X, town.Y}, res)
			if !ok {
				continue
			}
			v := place(Village, c, res, town.ID)
			town.Vassals = append(town.Vassals, v.ID)
		}
	}

	// Phase 3: cities claim clusters of independent towns. Candidates
	// with the most towns in reach settle first.
	type cityCand struct {
		c     cell
		count int
	}
	var cands []cityCand
	for _, c := range coastal {
		if occupied[c.y*w+c.x] {
			continue
		}
		count := 0
		for _, t := range towns {
			if absInt(t.X-c.x)+absInt(t.Y-c.y) <= cityRange {
				count++
			}
		}
		if count >= cityMinTowns {
			cands = append(cands, cityCand{c, count})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].count > cands[j].count })

	for _, cc := range cands {
		if occupied[cc.c.y*w+cc.c.x] {
			continue
		}
		var claim []*Settlement
		for _, t := range towns {
			if t.VassalTo < 0 && absInt(t.X-cc.c.x)+absInt(t.Y-cc.c.y) <= cityRange {
				claim = append(claim, t)
			}
		}
		if len(claim) < cityMinTowns {
			continue
		}
		city := place(City, cc.c, ResourceNone, -1)
		for _, t := range claim {
			t.VassalTo = city.ID
			city.Vassals = append(city.Vassals, t.ID)
		}
	}

	return out
}

// hasTerrainNear reports whether any cell within the Manhattan radius
// satisfies the predicate.
func hasTerrainNear(grid *Grid, c cell, radius int, pred func(Category) bool) bool {
	for dy := -radius; dy <= radius; dy++ {
		rem := radius - absInt(dy)
		for dx := -rem; dx <= rem; dx++ {
			nx, ny := c.x+dx, c.y+dy
			if !grid.InBounds(nx, ny) {
				continue
			}
			if pred(grid.At(nx, ny)) {
				return true
			}
		}
	}
	return false
}

// findVillageSite walks expanding Manhattan rings around the town and
// returns the first unoccupied tile suiting the resource: grassland for
// agriculture, hills for mining, forest for lumber, and for water any
// passable tile adjacent to fresh or coastal water.
func findVillageSite(grid *Grid, waterSet []bool, occupied map[int]bool, town cell, res Resource) (cell, bool) {
	w := grid.Width
	suits := func(x, y int) bool {
		if occupied[y*w+x] {
			return false
		}
		tc := grid.At(x, y)
		switch res {
		case ResourceWater:
			if !tc.CanMoveThrough() {
				return false
			}
			for _, d := range dirs8 {
				nx, ny := x+d.dx, y+d.dy
				if grid.InBounds(nx, ny) && waterSet[ny*w+nx] {
					return true
				}
			}
			return false
		case ResourceAgriculture:
			return tc == Grassland
		case ResourceMining:
			return tc == Hills
		case ResourceLumber:
			return tc == Forest || tc == ForestedHill
		}
		return false
	}

	for r := 1; r <= villageRange; r++ {
		for dx := -r; dx <= r; dx++ {
			dy := r - absInt(dx)
			for _, sy := range []int{dy, -dy} {
				if sy == -dy && dy == 0 {
					continue
				}
				nx, ny := town.x+dx, town.y+sy
				if !grid.InBounds(nx, ny) {
					continue
				}
				if suits(nx, ny) {
					return cell{nx, ny}, true
				}
			}
		}
	}
	return cell{}, false
}

// spacingIndex is a coarse spatial hash used to keep towns apart without
// scanning every placed town per candidate. Bucket size equals the
// spacing radius, so only the 3×3 neighborhood needs checking.
type spacingIndex struct {
	radius  int
	buckets map[[2]int][]cell
}

func newSpacingIndex(radius int) *spacingIndex {
	return &spacingIndex{radius: radius, buckets: make(map[[2]int][]cell)}
}

func (s *spacingIndex) key(c cell) [2]int {
	return [2]int{c.x / s.radius, c.y / s.radius}
}

func (s *spacingIndex) add(c cell) {
	k := s.key(c)
	s.buckets[k] = append(s.buckets[k], c)
}

// clear reports whether no recorded cell lies within the spacing radius
// (Euclidean) of c.
func (s *spacingIndex) clear(c cell) bool {
	k := s.key(c)
	r2 := s.radius * s.radius
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, o := range s.buckets[[2]int{k[0] + dx, k[1] + dy}] {
				ddx, ddy := o.x-c.x, o.y-c.y
				if ddx*ddx+ddy*ddy < r2 {
					return false
				}
			}
		}
	}
	return true
}
