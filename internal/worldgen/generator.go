package worldgen

import (
	"math/rand"
)

// Config holds world generation parameters.
type Config struct {
	Width  int
	Height int

	// Seed drives every stage of generation. 0 means "pick one at random";
	// the chosen value is reported on the World so the map can be recreated.
	Seed int64

	// Progress, if set, is invoked synchronously at generation milestones
	// with a fraction in [0, 1] and a short message. It must not block.
	Progress func(frac float64, msg string)
}

// DefaultConfig returns a mid-sized world configuration.
func DefaultConfig() Config {
	return Config{
		Width:  640,
		Height: 480,
	}
}

// World is the output of a generation run. Ownership of the grid and the
// settlement list transfers to the caller; elevation and flow intermediates
// are discarded when Generate returns.
type World struct {
	Grid        *Grid
	Settlements []*Settlement
	Seed        int64
	Thresholds  Thresholds
}

// Generator runs the generation pipeline. A Generator is not reentrant, but
// independent Generators may run concurrently: each owns its grids and RNG.
type Generator struct {
	cfg        Config
	seed       int64
	rng        *rand.Rand
	thresholds Thresholds
	riv        riverParams
}

// New creates a generator for the given configuration.
func New(cfg Config) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Generator{
		cfg:  cfg,
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
		riv:  defaultRiverParams(),
	}
}

// Seed returns the effective seed (resolved if the config asked for a
// random one).
func (g *Generator) Seed() int64 { return g.seed }

// Generate runs the full pipeline: elevation, classification, coastline
// refinement, hydrology, vegetation, border reinforcement, and settlement
// placement. It always terminates; every potentially unbounded search is
// capped, and unsatisfiable placements yield fewer settlements rather than
// an error.
func (g *Generator) Generate() *World {
	g.progress(0.0, "synthesizing elevation")
	elev := g.synthesizeElevation()

	g.progress(0.20, "computing elevation thresholds")
	g.thresholds = computeThresholds(elev)

	g.progress(0.25, "classifying terrain")
	grid := classify(elev, g.thresholds)

	g.progress(0.35, "refining coastlines")
	grid = refineCoastline(grid)
	grid = refineCoastline(grid)

	g.progress(0.50, "carving rivers and lakes")
	water := g.carveHydrology(grid, elev)

	g.progress(0.85, "growing forests")
	g.growVegetation(grid, elev, water)

	g.progress(0.95, "reinforcing map borders")
	g.reinforceBorders(grid, elev)

	g.progress(0.98, "placing settlements")
	settlements := g.placeSettlements(grid, water)

	g.progress(1.0, "generation complete")
	return &World{
		Grid:        grid,
		Settlements: settlements,
		Seed:        g.seed,
		Thresholds:  g.thresholds,
	}
}

func (g *Generator) progress(frac float64, msg string) {
	if g.cfg.Progress != nil {
		g.cfg.Progress(frac, msg)
	}
}
