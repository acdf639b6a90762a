package worldgen

import (
	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseField produces smooth scalar noise in approximately [-1, 1],
// deterministic for a given seed.
type NoiseField interface {
	Sample(x, y float64) float64
}

type simplexField struct {
	n opensimplex.Noise
}

func (f simplexField) Sample(x, y float64) float64 {
	return f.n.Eval2(x, y)
}

// newElevationNoise returns the simplex field used for elevation synthesis.
func newElevationNoise(seed int64) NoiseField {
	return simplexField{n: opensimplex.New(seed)}
}

type perlinField struct {
	p *perlin.Perlin
}

func (f perlinField) Sample(x, y float64) float64 {
	return f.p.Noise2D(x, y)
}

// newVegetationNoise returns the gradient field used for forest clustering.
// A single-iteration Perlin source; octave layering is applied by the caller.
func newVegetationNoise(seed int64) NoiseField {
	return perlinField{p: perlin.NewPerlin(2, 2, 1, seed)}
}

// octave sums layered noise at doubling frequency and decaying amplitude,
// normalized by the total amplitude so the result stays in roughly [-1, 1].
func octave(f NoiseField, x, y float64, octaves int, persistence, scale float64) float64 {
	var (
		value     float64
		amplitude = 1.0
		frequency = scale
		maxValue  float64
	)
	for i := 0; i < octaves; i++ {
		value += f.Sample(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return value / maxValue
}
