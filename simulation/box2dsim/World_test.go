package box2dsim

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gopanda/simulation"
)

func vecEqual(a, b r3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// newPlatformWorld returns a World holding a kinematic platform whose top
// surface is at z = 0.21
func newPlatformWorld(render bool) *World {
	w := New(render)
	w.CreateBox(simulation.Box{
		Name:        "platform",
		HalfExtents: r3.Vec{X: 0.1, Y: 0.1, Z: 0.01},
		Position:    r3.Vec{Z: 0.2},
	})
	return w
}

func cube(name string, mass float64, ghost bool, pos r3.Vec) simulation.Box {
	return simulation.Box{
		Name:        name,
		HalfExtents: r3.Vec{X: 0.02, Y: 0.02, Z: 0.02},
		Mass:        mass,
		Ghost:       ghost,
		Position:    pos,
	}
}

func TestPoseRoundTrip(t *testing.T) {
	w := newPlatformWorld(false)
	w.CreateBox(cube("box", 0, false, r3.Vec{}))

	pos := r3.Vec{X: 0.1, Y: -0.2, Z: 0.3}
	rot := simulation.QuaternionFromRotation(r3.NewRotation(0.3,
		r3.Vec{X: 1}))
	w.SetBasePose("box", pos, rot)

	if got := w.BasePosition("box"); !vecEqual(got, pos, 1e-6) {
		t.Errorf("basePosition: expected %v, got %v", pos, got)
	}

	got := w.BaseRotation("box")
	for i := range got {
		if !scalar.EqualWithinAbs(got[i], rot[i], 1e-6) {
			t.Errorf("baseRotation: expected %v, got %v", rot, got)
			break
		}
	}

	w.SetBasePose("box", pos, simulation.Identity)
	if a := w.BaseRotation("box").AngleX(); !scalar.EqualWithinAbs(a, 0,
		1e-9) {
		t.Errorf("baseRotation: expected no rotation, got angle %v", a)
	}
}

func TestVelocityRoundTrip(t *testing.T) {
	w := New(false)
	w.CreateBox(cube("box", 0, false, r3.Vec{}))

	linear := r3.Vec{X: 0.5, Y: -1, Z: 2}
	w.SetBaseVelocity("box", linear, r3.Vec{X: 0.25})

	if got := w.BaseVelocity("box"); !vecEqual(got, linear, 1e-6) {
		t.Errorf("baseVelocity: expected %v, got %v", linear, got)
	}
	if got := w.BaseAngularVelocity("box"); !scalar.EqualWithinAbs(got.X,
		0.25, 1e-6) {
		t.Errorf("baseAngularVelocity: expected 0.25, got %v", got.X)
	}

	// Kinematic bodies move with their velocity
	w.Step()
	want := r3.Scale(w.Timestep(), linear)
	if got := w.BasePosition("box"); !vecEqual(got, want, 1e-4) {
		t.Errorf("step: expected %v, got %v", want, got)
	}
}

func TestFreeFall(t *testing.T) {
	w := New(false)
	w.CreateBox(cube("box", 1, false, r3.Vec{Z: 1}))

	w.Step()
	if z := w.BasePosition("box").Z; z >= 1 {
		t.Errorf("step: box should fall, z = %v", z)
	}
	if vz := w.BaseVelocity("box").Z; vz >= 0 {
		t.Errorf("step: box should be falling, vz = %v", vz)
	}
}

func TestRestingContact(t *testing.T) {
	w := newPlatformWorld(false)
	w.CreateBox(cube("box", 1, false, r3.Vec{Z: 0.232}))

	for i := 0; i < 25; i++ {
		w.Step()
	}

	contacts := w.ContactPoints("box", "platform")
	if len(contacts) == 0 {
		t.Fatal("contactPoints: resting box should touch the platform")
	}
	if contacts[0].BodyA != "box" || contacts[0].BodyB != "platform" {
		t.Errorf("contactPoints: wrong bodies %v and %v", contacts[0].BodyA,
			contacts[0].BodyB)
	}
	if n := contacts[0].Normal; n.Z != -1 {
		t.Errorf("contactPoints: normal should point down, got %v", n)
	}

	if z := w.BasePosition("box").Z; math.Abs(z-0.23) > 0.005 {
		t.Errorf("step: box should rest at z = 0.23, got %v", z)
	}
	if z := w.BasePosition("platform").Z; z != 0.2 {
		t.Errorf("step: kinematic platform should not move, z = %v", z)
	}
}

func TestContactNeedsXOverlap(t *testing.T) {
	w := newPlatformWorld(false)
	w.CreateBox(cube("box", 1, false, r3.Vec{X: 0.5, Z: 0.232}))

	for i := 0; i < 25; i++ {
		w.Step()
	}

	if len(w.ContactPoints("box", "platform")) != 0 {
		t.Error("contactPoints: bodies apart along x should not touch")
	}
}

func TestNoPushWithoutXOverlap(t *testing.T) {
	w := New(false)
	w.CreateTable(1.1, 0.7, 0.4, -0.3)
	w.CreateBox(cube("object", 1, false, r3.Vec{X: -0.3, Z: 0.02}))
	w.CreateBox(simulation.Box{
		Name:        "platform",
		HalfExtents: r3.Vec{X: 0.1, Y: 0.1, Z: 0.01},
		Position:    r3.Vec{X: 0.15, Y: -0.2, Z: 0.01},
	})

	// Let the object settle on the table
	for i := 0; i < 5; i++ {
		w.Step()
	}
	start := w.BasePosition("object")

	// Sweep the platform through the object's y-z footprint
	for i := 0; i < 60; i++ {
		pos := w.BasePosition("platform")
		pos.Y += 0.003
		w.SetBasePose("platform", pos, simulation.Identity)
		w.Step()

		if len(w.ContactPoints("object", "platform")) != 0 {
			t.Fatal("contactPoints: bodies apart along x should not touch")
		}
	}

	end := w.BasePosition("object")
	if !scalar.EqualWithinAbs(end.Y, start.Y, 1e-3) {
		t.Errorf("step: platform apart along x pushed the object from "+
			"y = %v to y = %v", start.Y, end.Y)
	}
	if !scalar.EqualWithinAbs(end.Z, start.Z, 5e-3) {
		t.Errorf("step: object should stay on the table, z went from %v "+
			"to %v", start.Z, end.Z)
	}
}

func TestGhostNoContact(t *testing.T) {
	w := newPlatformWorld(false)
	w.CreateBox(cube("ghost", 0, true, r3.Vec{Z: 0.2}))
	w.CreateBox(cube("box", 1, false, r3.Vec{Z: 0.4}))
	w.CreateBox(cube("target", 0, true, r3.Vec{Z: 0.3}))

	for i := 0; i < 25; i++ {
		w.Step()
		if len(w.ContactPoints("ghost", "platform")) != 0 {
			t.Fatal("contactPoints: ghost should never touch the platform")
		}
		if len(w.ContactPoints("box", "target")) != 0 {
			t.Fatal("contactPoints: box should never touch a ghost")
		}
	}

	// The box falls through the ghost target onto the platform
	if len(w.ContactPoints("box", "platform")) == 0 {
		t.Error("contactPoints: box should land on the platform")
	}
}

func TestUnknownBody(t *testing.T) {
	w := New(false)

	defer func() {
		if recover() == nil {
			t.Error("basePosition: should panic for unknown bodies")
		}
	}()
	w.BasePosition("robot")
}

func TestDuplicateBody(t *testing.T) {
	w := newPlatformWorld(false)

	defer func() {
		if recover() == nil {
			t.Error("createBox: should panic for duplicate bodies")
		}
	}()
	w.CreateBox(cube("platform", 1, false, r3.Vec{}))
}

func TestSceneBodies(t *testing.T) {
	w := New(false)
	w.CreatePlane(-0.4)
	w.CreateTable(1.1, 0.7, 0.4, -0.3)

	if got := w.Bodies(); len(got) != 2 || got[0] != "plane" ||
		got[1] != "table" {
		t.Errorf("bodies: expected [plane table], got %v", got)
	}

	// The table top is at z = 0
	top := w.BasePosition("table").Z + w.HalfExtents("table").Z
	if !scalar.EqualWithinAbs(top, 0, 1e-6) {
		t.Errorf("createTable: table top should be at 0, got %v", top)
	}

	w.Step()
	if z := w.BasePosition("table").Z; !scalar.EqualWithinAbs(z, -0.2,
		1e-6) {
		t.Errorf("step: table should not move, z = %v", z)
	}
}

func TestTimestep(t *testing.T) {
	w := New(false)
	if !scalar.EqualWithinAbs(w.Timestep(), 0.04, 1e-12) {
		t.Errorf("timestep: expected 0.04, got %v", w.Timestep())
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()

	w := newPlatformWorld(false)
	saved, err := w.Render(filepath.Join(dir, "off.png"))
	if err != nil || saved {
		t.Errorf("render: world without rendering should not save frames "+
			"(saved = %v, err = %v)", saved, err)
	}

	w = newPlatformWorld(true)
	w.PlaceVisualizer(r3.Vec{}, 0.9, 45, -30)

	w.NoRendering(func() {
		saved, err = w.Render(filepath.Join(dir, "suppressed.png"))
	})
	if err != nil || saved {
		t.Error("render: should not save frames while suppressed")
	}
	if !w.Rendering() {
		t.Error("noRendering: rendering should be restored")
	}

	filename := filepath.Join(dir, "frame.png")
	saved, err = w.Render(filename)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !saved {
		t.Fatal("render: frame should be saved")
	}
	if _, err := os.Stat(filename); err != nil {
		t.Errorf("render: %v", err)
	}
}

func BenchmarkStep(b *testing.B) {
	w := newPlatformWorld(false)
	w.CreateBox(cube("box", 1, false, r3.Vec{Z: 0.232}))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Step()
	}
}
