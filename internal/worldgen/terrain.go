// Package worldgen generates the terrain grid and settlement layout for a
// world map. Everything is derived deterministically from a single integer
// seed: elevation synthesis, terrain classification, coastline smoothing,
// river and lake hydrology, forest cover, and settlement placement.
package worldgen

import "fmt"

// Category is a terrain category for a single map cell.
type Category uint8

const (
	DeepWater Category = iota
	ShallowWater
	River
	Grassland
	Hills
	ForestedHill
	Forest
	Mountain
)

// categoryIDs are the stable string identifiers used by persistence and
// rendering. Changing these breaks saved worlds.
var categoryIDs = [...]string{
	DeepWater:    "deep_water",
	ShallowWater: "shallow_water",
	River:        "river",
	Grassland:    "grassland",
	Hills:        "hills",
	ForestedHill: "forested_hill",
	Forest:       "forest",
	Mountain:     "mountain",
}

// String returns the stable identifier for the category.
func (c Category) String() string {
	if int(c) < len(categoryIDs) {
		return categoryIDs[c]
	}
	return "unknown"
}

// CategoryFromString is the inverse of String.
func CategoryFromString(s string) (Category, error) {
	for i, id := range categoryIDs {
		if id == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown terrain category %q", s)
}

// CanMoveThrough reports whether units can enter cells of this category.
// Rivers block movement on foot; crossings are a gameplay concern.
func (c Category) CanMoveThrough() bool {
	switch c {
	case Grassland, Hills, ForestedHill, Forest:
		return true
	default:
		return false
	}
}

// CanSeeThrough reports whether line of sight passes cells of this category.
// Water blocks movement but not view; tree cover blocks view but not movement.
func (c Category) CanSeeThrough() bool {
	switch c {
	case Mountain, Forest, ForestedHill:
		return false
	default:
		return true
	}
}

// IsWater reports whether the category is any water type.
func (c Category) IsWater() bool {
	return c == DeepWater || c == ShallowWater || c == River
}

// isLand distinguishes solid ground from water for the coastline rules.
func (c Category) isLand() bool {
	return c == Grassland || c == Hills || c == ForestedHill || c == Mountain
}

// Grid is a width×height terrain grid stored row-major in a flat slice.
type Grid struct {
	Width  int
	Height int
	Cells  []Category
}

// NewGrid allocates a grid filled with DeepWater.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]Category, width*height),
	}
}

// At returns the category at (x, y). Coordinates are clamped into bounds so
// generated index arithmetic can never panic.
func (g *Grid) At(x, y int) Category {
	return g.Cells[g.idx(x, y)]
}

// Set writes the category at (x, y), clamping coordinates into bounds.
func (g *Grid) Set(x, y int, c Category) {
	g.Cells[g.idx(x, y)] = c
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

func (g *Grid) idx(x, y int) int {
	x = clamp(x, 0, g.Width-1)
	y = clamp(y, 0, g.Height-1)
	return y*g.Width + x
}

// Census returns the number of cells per terrain category.
func (g *Grid) Census() map[Category]int {
	counts := make(map[Category]int)
	for _, c := range g.Cells {
		counts[c]++
	}
	return counts
}

// HeightField is a width×height elevation grid in [0, 1], stored row-major.
type HeightField struct {
	Width  int
	Height int
	Values []float64
}

// NewHeightField allocates a zeroed height field.
func NewHeightField(width, height int) *HeightField {
	return &HeightField{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// At returns the elevation at (x, y), clamping coordinates into bounds.
func (h *HeightField) At(x, y int) float64 {
	return h.Values[h.idx(x, y)]
}

// Set writes the elevation at (x, y).
func (h *HeightField) Set(x, y int, v float64) {
	h.Values[h.idx(x, y)] = v
}

// InBounds reports whether (x, y) lies on the field.
func (h *HeightField) InBounds(x, y int) bool {
	return x >= 0 && x < h.Width && y >= 0 && y < h.Height
}

func (h *HeightField) idx(x, y int) int {
	x = clamp(x, 0, h.Width-1)
	y = clamp(y, 0, h.Height-1)
	return y*h.Width + x
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// dir8 is one of the eight neighbor offsets, with the distance factor used
// to weight diagonal steps.
type dir8 struct {
	dx, dy int
	dist   float64
}

// dirs8 lists the D8 neighborhood: N, NE, E, SE, S, SW, W, NW.
var dirs8 = [8]dir8{
	{0, -1, 1.0},
	{1, -1, 1.414},
	{1, 0, 1.0},
	{1, 1, 1.414},
	{0, 1, 1.0},
	{-1, 1, 1.414},
	{-1, 0, 1.0},
	{-1, -1, 1.414},
}
