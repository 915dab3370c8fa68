// Package box2dsim implements a simulation.Backend on top of Box2D.
//
// Box2D is a planar physics engine, so the World simulates rigid bodies
// in the vertical y-z plane of the scene: the Box2D x axis is the scene's
// y axis and the Box2D y axis is the scene's z axis (gravity points down
// the z axis). Rotations are about the scene's x axis. The x coordinate of
// each body is integrated kinematically from its x velocity and is
// damped whenever the body touches another body. Contacts are only
// reported between bodies whose x extents overlap.
//
// Bodies with zero mass are kinematic: they never move unless their pose
// is set, but dynamic bodies collide with them. Ghost bodies never
// collide with anything.
package box2dsim

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gopanda/simulation"
)

const (
	// Box2D world units per metre. Box2D is tuned for bodies between
	// 0.1 and 10 units, and the scene's bodies are a few centimetres.
	Scale float64 = 10.0

	Gravity float64 = -9.81

	// TimeStep is the Box2D step length, and Substeps the number of
	// Box2D steps taken per call to World.Step
	TimeStep float64 = 1.0 / 500.0
	Substeps int     = 20

	VelocityIterations int = 8
	PositionIterations int = 3

	// XDamping multiplies the x velocity of a body on each Box2D step
	// during which the body touches another body
	XDamping float64 = 0.5

	// Size of the ground plane along x and y
	PlaneExtent float64 = 5.0
)

const (
	staticBody    uint8 = 0
	kinematicBody uint8 = 1
	dynamicBody   uint8 = 2
)

const (
	solidCategory uint16 = 0x0001
	ghostCategory uint16 = 0x0000
)

type body struct {
	name        string
	b           *box2d.B2Body
	halfExtents r3.Vec
	x           float64
	vx          float64
	bodyType    uint8
	ghost       bool
	rgba        [4]float64
}

type camera struct {
	target     r3.Vec
	distance   float64
	yaw, pitch float64
}

// World is a planar Box2D simulation satisfying simulation.Backend
type World struct {
	world box2d.B2World

	bodies []*body
	byName map[string]*body
	byPtr  map[*box2d.B2Body]*body

	// Number of touching fixture pairs between two bodies, keyed by the
	// ordered pair of body names
	touching map[[2]string]int

	render bool
	camera camera
}

// New returns a new, empty World. If render is false, rendering is
// suppressed for the lifetime of the World.
func New(render bool) *World {
	w := &World{
		world:    box2d.MakeB2World(box2d.MakeB2Vec2(0, Gravity*Scale)),
		byName:   make(map[string]*body),
		byPtr:    make(map[*box2d.B2Body]*body),
		touching: make(map[[2]string]int),
		render:   render,
		camera:   camera{distance: 1.0},
	}
	w.world.SetContactListener(newContactDetector(w))

	return w
}

// get returns the named body, panicking if it does not exist
func (w *World) get(name string) *body {
	b, ok := w.byName[name]
	if !ok {
		panic(fmt.Sprintf("get: no such body %q", name))
	}
	return b
}

// Bodies returns the names of all bodies in creation order
func (w *World) Bodies() []string {
	names := make([]string, len(w.bodies))
	for i := range w.bodies {
		names[i] = w.bodies[i].name
	}
	return names
}

// HalfExtents returns the half extents of the named body
func (w *World) HalfExtents(name string) r3.Vec {
	return w.get(name).halfExtents
}

// BasePosition returns the position of the centre of the named body
func (w *World) BasePosition(name string) r3.Vec {
	b := w.get(name)
	pos := b.b.GetPosition()

	return r3.Vec{X: b.x, Y: pos.X / Scale, Z: pos.Y / Scale}
}

// BaseRotation returns the orientation of the named body
func (w *World) BaseRotation(name string) simulation.Quaternion {
	b := w.get(name)
	rot := r3.NewRotation(b.b.GetAngle(), r3.Vec{X: 1})

	return simulation.QuaternionFromRotation(rot)
}

// BaseVelocity returns the linear velocity of the named body
func (w *World) BaseVelocity(name string) r3.Vec {
	b := w.get(name)
	vel := b.b.GetLinearVelocity()

	return r3.Vec{X: b.vx, Y: vel.X / Scale, Z: vel.Y / Scale}
}

// BaseAngularVelocity returns the angular velocity of the named body
func (w *World) BaseAngularVelocity(name string) r3.Vec {
	return r3.Vec{X: w.get(name).b.GetAngularVelocity()}
}

// SetBasePose teleports the named body. Velocities are left unchanged.
func (w *World) SetBasePose(name string, position r3.Vec,
	orientation simulation.Quaternion) {
	b := w.get(name)
	b.x = position.X
	b.b.SetTransform(box2d.MakeB2Vec2(position.Y*Scale, position.Z*Scale),
		orientation.AngleX())
	b.b.SetAwake(true)
}

// SetBaseVelocity sets the linear and angular velocity of the named
// body. Only the x component of the angular velocity is used.
func (w *World) SetBaseVelocity(name string, linear, angular r3.Vec) {
	b := w.get(name)
	if b.bodyType == staticBody {
		return
	}
	b.vx = linear.X
	b.b.SetLinearVelocity(box2d.MakeB2Vec2(linear.Y*Scale, linear.Z*Scale))
	b.b.SetAngularVelocity(angular.X)
	b.b.SetAwake(true)
}

// ContactPoints returns the points of contact between two bodies. Each
// touching pair of bodies reports a single point at the centre of the
// overlap of their bounding boxes.
func (w *World) ContactPoints(nameA, nameB string) []simulation.ContactPoint {
	a, b := w.get(nameA), w.get(nameB)
	if w.touching[pairKey(nameA, nameB)] <= 0 || !overlapX(a, b) {
		return nil
	}

	posA, posB := w.BasePosition(nameA), w.BasePosition(nameB)

	lowA, highA := r3.Sub(posA, a.halfExtents), r3.Add(posA, a.halfExtents)
	lowB, highB := r3.Sub(posB, b.halfExtents), r3.Add(posB, b.halfExtents)
	low := r3.Vec{
		X: math.Max(lowA.X, lowB.X),
		Y: math.Max(lowA.Y, lowB.Y),
		Z: math.Max(lowA.Z, lowB.Z),
	}
	high := r3.Vec{
		X: math.Min(highA.X, highB.X),
		Y: math.Min(highA.Y, highB.Y),
		Z: math.Min(highA.Z, highB.Z),
	}
	point := r3.Scale(0.5, r3.Add(low, high))

	// The contact normal points from A to B along the axis of least
	// penetration in the simulated plane
	penY := high.Y - low.Y
	penZ := high.Z - low.Z
	var normal r3.Vec
	var penetration float64
	if penZ <= penY {
		normal = r3.Vec{Z: math.Copysign(1, posB.Z-posA.Z)}
		penetration = penZ
	} else {
		normal = r3.Vec{Y: math.Copysign(1, posB.Y-posA.Y)}
		penetration = penY
	}

	return []simulation.ContactPoint{{
		BodyA:       nameA,
		BodyB:       nameB,
		PositionOnA: point,
		PositionOnB: point,
		Normal:      normal,
		Distance:    -math.Max(penetration, 0),
	}}
}

// CreatePlane creates the ground plane with its top surface at zOffset
func (w *World) CreatePlane(zOffset float64) {
	w.createBox(simulation.Box{
		Name:        "plane",
		HalfExtents: r3.Vec{X: PlaneExtent, Y: PlaneExtent, Z: 0.01},
		Position:    r3.Vec{Z: zOffset - 0.01},
		RGBA:        [4]float64{0.15, 0.15, 0.15, 1.0},
	}, staticBody)
}

// CreateTable creates a table whose top surface is at z = 0
func (w *World) CreateTable(length, width, height, xOffset float64) {
	w.createBox(simulation.Box{
		Name:        "table",
		HalfExtents: r3.Vec{X: length / 2, Y: width / 2, Z: height / 2},
		Position:    r3.Vec{X: xOffset, Z: -height / 2},
		RGBA:        [4]float64{0.95, 0.95, 0.95, 1.0},
	}, staticBody)
}

// CreateBox creates a box shaped body. Boxes with zero mass are
// kinematic.
func (w *World) CreateBox(box simulation.Box) {
	bodyType := dynamicBody
	if box.Mass <= 0 {
		bodyType = kinematicBody
	}
	w.createBox(box, bodyType)
}

func (w *World) createBox(box simulation.Box, bodyType uint8) {
	if _, ok := w.byName[box.Name]; ok {
		panic(fmt.Sprintf("createBox: body %q already exists", box.Name))
	}

	def := box2d.MakeB2BodyDef()
	def.Type = bodyType
	def.Position = box2d.MakeB2Vec2(box.Position.Y*Scale, box.Position.Z*Scale)
	def.Angle = 0.0
	def.AllowSleep = false
	b2Body := w.world.CreateBody(&def)

	shape := box2d.NewB2PolygonShape()
	shape.SetAsBox(box.HalfExtents.Y*Scale, box.HalfExtents.Z*Scale)

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Friction = 1.0
	fix.Restitution = 0.0
	if bodyType == dynamicBody {
		area := 4 * box.HalfExtents.Y * box.HalfExtents.Z * Scale * Scale
		fix.Density = box.Mass / area
	}

	filter := box2d.MakeB2Filter()
	if box.Ghost {
		fix.IsSensor = true
		filter.CategoryBits = ghostCategory
		filter.MaskBits = 0x0000
	} else {
		filter.CategoryBits = solidCategory
		filter.MaskBits = solidCategory
	}
	fix.Filter = filter
	b2Body.CreateFixtureFromDef(&fix)

	b := &body{
		name:        box.Name,
		b:           b2Body,
		halfExtents: box.HalfExtents,
		x:           box.Position.X,
		bodyType:    bodyType,
		ghost:       box.Ghost,
		rgba:        box.RGBA,
	}
	w.bodies = append(w.bodies, b)
	w.byName[box.Name] = b
	w.byPtr[b2Body] = b
}

// NoRendering runs f with rendering suppressed
func (w *World) NoRendering(f func()) {
	render := w.render
	w.render = false
	defer func() { w.render = render }()

	f()
}

// Rendering returns whether rendering is currently enabled
func (w *World) Rendering() bool {
	return w.render
}

// PlaceVisualizer positions the camera used by Render
func (w *World) PlaceVisualizer(target r3.Vec, distance, yaw, pitch float64) {
	w.camera = camera{target: target, distance: distance, yaw: yaw,
		pitch: pitch}
}

// Step advances the simulation by Substeps Box2D steps
func (w *World) Step() {
	for i := 0; i < Substeps; i++ {
		w.world.Step(TimeStep, VelocityIterations, PositionIterations)

		for _, b := range w.bodies {
			if b.bodyType == staticBody {
				continue
			}
			b.x += b.vx * TimeStep
			if b.bodyType == dynamicBody && w.inContact(b.name) {
				b.vx *= XDamping
			}
		}
	}
}

// Timestep returns the simulated time covered by a single call to Step
func (w *World) Timestep() float64 {
	return TimeStep * float64(Substeps)
}

// inContact returns whether the named body touches any other body
func (w *World) inContact(name string) bool {
	for pair, n := range w.touching {
		if n <= 0 || (pair[0] != name && pair[1] != name) {
			continue
		}
		if overlapX(w.byName[pair[0]], w.byName[pair[1]]) {
			return true
		}
	}
	return false
}

// overlapX returns whether the x extents of two bodies overlap. Bodies
// apart along x never collide, whatever their overlap in the plane.
func overlapX(a, b *body) bool {
	return math.Abs(a.x-b.x) <= a.halfExtents.X+b.halfExtents.X
}

// pairKey returns the order-independent key for a pair of bodies
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
