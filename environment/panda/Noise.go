package panda

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gopanda/environment"
)

// Platform offsets are drawn on a grid of PlatformNoiseResolution. The
// y offset lies in [-0.25, 0.25) and the z offset in [-0.20, 0.08).
const (
	PlatformNoiseResolution float64 = 0.01

	platformYLow  int = -25
	platformYHigh int = 25
	platformZLow  int = -20
	platformZHigh int = 8
)

// Noise samples the random perturbations applied when a Task is reset
type Noise interface {
	// PlatformOffset returns the y and z offsets of the moving platform
	// from its nominal position
	PlatformOffset() (dy, dz float64)

	// ObjectOffset returns the offset of the object from its nominal
	// position
	ObjectOffset() r3.Vec
}

// UniformNoise samples platform offsets uniformly from the offset grid
// and object offsets uniformly from the object range:
//
//	x ϵ [-objRange, 0]
//	y ϵ [-objRange/2, objRange/2]
//	z = 0
type UniformNoise struct {
	platform *environment.CategoricalStarter
	object   *environment.UniformStarter
}

// NewUniformNoise returns a new UniformNoise drawing randomness from src
func NewUniformNoise(objRange float64, src rand.Source) *UniformNoise {
	platform := environment.NewCategoricalStarter([]int{
		platformYHigh - platformYLow,
		platformZHigh - platformZLow,
	}, src)

	object := environment.NewUniformStarter([]r1.Interval{
		{Min: -objRange, Max: 0},
		{Min: -objRange / 2, Max: objRange / 2},
		{Min: 0, Max: 0},
	}, src)

	return &UniformNoise{platform, object}
}

// PlatformOffset implements the Noise interface
func (u *UniformNoise) PlatformOffset() (dy, dz float64) {
	cell := u.platform.Start()

	dy = (cell.AtVec(0) + float64(platformYLow)) * PlatformNoiseResolution
	dz = (cell.AtVec(1) + float64(platformZLow)) * PlatformNoiseResolution
	return dy, dz
}

// ObjectOffset implements the Noise interface
func (u *UniformNoise) ObjectOffset() r3.Vec {
	offset := u.object.Start()
	return r3.Vec{X: offset.AtVec(0), Y: offset.AtVec(1), Z: offset.AtVec(2)}
}

// FixedNoise always returns the same offsets. The zero value applies no
// noise at all.
type FixedNoise struct {
	DY, DZ float64
	Object r3.Vec
}

// PlatformOffset implements the Noise interface
func (f FixedNoise) PlatformOffset() (dy, dz float64) {
	return f.DY, f.DZ
}

// ObjectOffset implements the Noise interface
func (f FixedNoise) ObjectOffset() r3.Vec {
	return f.Object
}
