package box2dsim

import "github.com/ByteArena/box2d"

// contactDetector counts the touching fixture pairs between each pair of
// bodies in a World
type contactDetector struct {
	w *World
}

func newContactDetector(w *World) *contactDetector {
	return &contactDetector{w}
}

// bodies returns the World bodies involved in a contact
func (c *contactDetector) bodies(contact box2d.B2ContactInterface) (*body,
	*body, bool) {
	a, okA := c.w.byPtr[contact.GetFixtureA().GetBody()]
	b, okB := c.w.byPtr[contact.GetFixtureB().GetBody()]
	return a, b, okA && okB
}

func (c *contactDetector) BeginContact(contact box2d.B2ContactInterface) {
	a, b, ok := c.bodies(contact)
	if !ok || a.ghost || b.ghost {
		return
	}
	c.w.touching[pairKey(a.name, b.name)]++
}

func (c *contactDetector) EndContact(contact box2d.B2ContactInterface) {
	a, b, ok := c.bodies(contact)
	if !ok || a.ghost || b.ghost {
		return
	}
	key := pairKey(a.name, b.name)
	c.w.touching[key]--
	if c.w.touching[key] <= 0 {
		delete(c.w.touching, key)
	}
}

// PreSolve disables contacts between bodies that are apart along x
func (c *contactDetector) PreSolve(contact box2d.B2ContactInterface,
	oldManifold box2d.B2Manifold) {
	a, b, ok := c.bodies(contact)
	if ok && !overlapX(a, b) {
		contact.SetEnabled(false)
	}
}

func (c *contactDetector) PostSolve(contact box2d.B2ContactInterface,
	impulse *box2d.B2ContactImpulse) {
}
