package panda

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gopanda/simulation"
)

type fakeBody struct {
	box      simulation.Box
	pos      r3.Vec
	rot      simulation.Quaternion
	vel      r3.Vec
	angVel   r3.Vec
	rendered bool // created while rendering was enabled
}

// fakeBackend is a simulation.Backend that never moves anything by
// itself. Contacts are declared by tests.
type fakeBackend struct {
	bodies   map[string]*fakeBody
	contacts map[[2]string]bool
	noRender int
	steps    int

	cameraTarget           r3.Vec
	cameraDistance         float64
	cameraYaw, cameraPitch float64
	cameraRendered         bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		bodies:   make(map[string]*fakeBody),
		contacts: make(map[[2]string]bool),
	}
}

func (f *fakeBackend) get(name string) *fakeBody {
	b, ok := f.bodies[name]
	if !ok {
		panic(fmt.Sprintf("get: no such body %q", name))
	}
	return b
}

func (f *fakeBackend) touch(a, b string, touching bool) {
	if a > b {
		a, b = b, a
	}
	f.contacts[[2]string{a, b}] = touching
}

func (f *fakeBackend) BasePosition(name string) r3.Vec { return f.get(name).pos }

func (f *fakeBackend) BaseRotation(name string) simulation.Quaternion {
	return f.get(name).rot
}

func (f *fakeBackend) BaseVelocity(name string) r3.Vec { return f.get(name).vel }

func (f *fakeBackend) BaseAngularVelocity(name string) r3.Vec {
	return f.get(name).angVel
}

func (f *fakeBackend) SetBasePose(name string, pos r3.Vec,
	rot simulation.Quaternion) {
	b := f.get(name)
	b.pos = pos
	b.rot = rot
}

func (f *fakeBackend) SetBaseVelocity(name string, linear, angular r3.Vec) {
	b := f.get(name)
	b.vel = linear
	b.angVel = angular
}

func (f *fakeBackend) ContactPoints(a, b string) []simulation.ContactPoint {
	f.get(a)
	f.get(b)
	key := [2]string{a, b}
	if a > b {
		key = [2]string{b, a}
	}
	if !f.contacts[key] {
		return nil
	}
	return []simulation.ContactPoint{{BodyA: a, BodyB: b}}
}

func (f *fakeBackend) CreatePlane(zOffset float64) {
	f.CreateBox(simulation.Box{Name: "plane", Position: r3.Vec{Z: zOffset}})
}

func (f *fakeBackend) CreateTable(length, width, height, xOffset float64) {
	f.CreateBox(simulation.Box{
		Name:        "table",
		HalfExtents: r3.Vec{X: length / 2, Y: width / 2, Z: height / 2},
		Position:    r3.Vec{X: xOffset, Z: -height / 2},
	})
}

func (f *fakeBackend) CreateBox(b simulation.Box) {
	if _, ok := f.bodies[b.Name]; ok {
		panic(fmt.Sprintf("createBox: body %q already exists", b.Name))
	}
	f.bodies[b.Name] = &fakeBody{
		box:      b,
		pos:      b.Position,
		rot:      simulation.Identity,
		rendered: f.noRender == 0,
	}
}

func (f *fakeBackend) NoRendering(fn func()) {
	f.noRender++
	defer func() { f.noRender-- }()
	fn()
}

func (f *fakeBackend) PlaceVisualizer(target r3.Vec, distance, yaw,
	pitch float64) {
	f.cameraTarget = target
	f.cameraDistance = distance
	f.cameraYaw = yaw
	f.cameraPitch = pitch
	f.cameraRendered = f.noRender == 0
}

func (f *fakeBackend) Step() { f.steps++ }

func (f *fakeBackend) Timestep() float64 { return 0.04 }

func objectBox() simulation.Box {
	half := ObjectSize / 2
	return simulation.Box{
		Name:        ObjectBody,
		HalfExtents: r3.Vec{X: half, Y: half, Z: half},
		Mass:        1.0,
		Position:    objectStart,
	}
}
