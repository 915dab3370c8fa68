// Package simulation defines the interface through which tasks and
// robots drive a rigid-body physics simulation. Bodies are addressed by
// name; asking for a body that was never created is a programming error
// and panics.
package simulation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quaternion is an orientation stored in (x, y, z, w) order
type Quaternion [4]float64

// Identity is the quaternion of no rotation
var Identity = Quaternion{0, 0, 0, 1}

// QuaternionFromRotation converts a gonum rotation to a Quaternion
func QuaternionFromRotation(r r3.Rotation) Quaternion {
	q := quat.Number(r)
	return Quaternion{q.Imag, q.Jmag, q.Kmag, q.Real}
}

// Rotation converts the Quaternion to a gonum rotation
func (q Quaternion) Rotation() r3.Rotation {
	return r3.Rotation(quat.Number{Real: q[3], Imag: q[0], Jmag: q[1],
		Kmag: q[2]})
}

// AngleX returns the rotation angle of q about the x axis. Rotations about
// other axes are ignored.
func (q Quaternion) AngleX() float64 {
	return 2 * math.Atan2(q[0], q[3])
}

// Slice returns the quaternion as a slice in (x, y, z, w) order
func (q Quaternion) Slice() []float64 {
	return []float64{q[0], q[1], q[2], q[3]}
}

// ContactPoint is a single point of contact between two bodies
type ContactPoint struct {
	BodyA, BodyB string
	PositionOnA  r3.Vec
	PositionOnB  r3.Vec
	Normal       r3.Vec
	Distance     float64
}

// Box describes a box shaped body
type Box struct {
	Name        string
	HalfExtents r3.Vec
	Mass        float64 // zero mass bodies are static
	Ghost       bool    // ghost bodies never collide
	Position    r3.Vec
	RGBA        [4]float64
}

// Backend is a rigid-body simulation that can be queried and modified
// body by body
type Backend interface {
	BasePosition(body string) r3.Vec
	BaseRotation(body string) Quaternion
	BaseVelocity(body string) r3.Vec
	BaseAngularVelocity(body string) r3.Vec
	SetBasePose(body string, position r3.Vec, orientation Quaternion)
	SetBaseVelocity(body string, linear, angular r3.Vec)

	// ContactPoints returns the contact points between two bodies. An
	// empty slice means the bodies are not touching.
	ContactPoints(bodyA, bodyB string) []ContactPoint

	CreatePlane(zOffset float64)
	CreateTable(length, width, height, xOffset float64)
	CreateBox(b Box)

	// NoRendering runs f with rendering suppressed
	NoRendering(f func())

	// PlaceVisualizer positions the camera
	PlaceVisualizer(target r3.Vec, distance, yaw, pitch float64)

	// Step advances the simulation by one tick
	Step()

	// Timestep returns the simulated time advanced by each call to Step
	Timestep() float64
}
