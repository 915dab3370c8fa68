package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter returns starting vectors sampled uniformly from a box
// of intervals. An interval with Min == Max fixes that dimension.
type UniformStarter struct {
	features int
	rand     *distmv.Uniform
}

// NewUniformStarter returns a new UniformStarter sampling dimension i
// from bounds[i], drawing randomness from src
func NewUniformStarter(bounds []r1.Interval, src rand.Source) *UniformStarter {
	rand := distmv.NewUniform(bounds, src)

	return &UniformStarter{len(bounds), rand}
}

// Start returns a starting vector
func (u *UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(u.features, u.rand.Rand(nil))
}
