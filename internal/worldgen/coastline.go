package worldgen

// refineCoastline smooths land/water boundaries by local majority vote,
// removing single-tile noise artifacts. The result is written to a fresh
// grid so a conversion cannot cascade within the same pass. Callers apply
// the pass twice; the second run cleans up artifacts of the first.
func refineCoastline(grid *Grid) *Grid {
	out := NewGrid(grid.Width, grid.Height)

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			cur := grid.At(x, y)

			var waterN, landN, shallowN int
			for _, d := range dirs8 {
				nx, ny := x+d.dx, y+d.dy
				if !grid.InBounds(nx, ny) {
					continue
				}
				switch n := grid.At(nx, ny); {
				case n.IsWater():
					waterN++
					if n == ShallowWater {
						shallowN++
					}
				case n.isLand():
					landN++
				}
			}

			next := cur
			switch {
			case cur == DeepWater && (landN >= 3 || shallowN >= 2):
				// Deep water hemmed in by land or shelf becomes shelf.
				next = ShallowWater
			case cur == Grassland && waterN >= 4:
				// Land mostly surrounded by water erodes into a beach.
				next = ShallowWater
			}
			out.Set(x, y, next)
		}
	}
	return out
}
