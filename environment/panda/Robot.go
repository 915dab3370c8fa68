package panda

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gopanda/environment"
	"github.com/samuelfneumann/gopanda/simulation"
	"github.com/samuelfneumann/gopanda/utils/floatutils"
)

// ControlType determines how a Robot interprets its actions
type ControlType string

const (
	// EE actions displace the end-effector in world coordinates
	EE ControlType = "ee"

	// Joints actions displace the three prismatic joints of the arm,
	// which are measured from the robot's base
	Joints ControlType = "joints"
)

// ParseControlType returns the ControlType named by s
func ParseControlType(s string) (ControlType, error) {
	switch ControlType(s) {
	case EE, Joints:
		return ControlType(s), nil
	}
	return "", fmt.Errorf("parseControlType: no such control type %q", s)
}

const (
	// EEBody is the name of the ghost body marking the end-effector
	EEBody string = "panda_ee"

	// ActionLen is the length of a Robot's actions
	ActionLen int = 4

	// RobotObservationLen is the length of a Robot's observation
	RobotObservationLen int = 7

	// MaxDisplacement is the displacement of the end-effector or joints
	// caused by an action of magnitude 1
	MaxDisplacement float64 = 0.05

	// MaxFingerChange is the change in finger width caused by an action
	// of magnitude 1
	MaxFingerChange float64 = 0.02

	// MaxFingerWidth is the width of the fully opened gripper
	MaxFingerWidth float64 = 0.08

	// GraspRadius is the distance from the object centre within which
	// closing the gripper grasps the object
	GraspRadius float64 = 0.02
)

var (
	// workspace bounds the end-effector in world coordinates
	workspace = [3]r1.Interval{
		{Min: -0.6, Max: 0.6},
		{Min: -0.5, Max: 0.5},
		{Min: 0.0, Max: 0.6},
	}

	// neutralJoints are the joint values the robot is reset to
	neutralJoints = r3.Vec{X: 0.6, Y: 0.0, Z: 0.2}
)

// Robot is a kinematic Panda arm. The arm places its end-effector
// exactly where it is told to and the gripper grasps the object once
// the fingers close around it. A grasped object follows the
// end-effector, and is released with the end-effector's velocity when
// the fingers open, so that it can be thrown.
//
// Robot actions are 4-dimensional and consist of the displacement of
// the end-effector (or of the joints) along x, y and z, followed by the
// change in finger width. Each action dimension is clipped to [-1, 1].
//
// Robot observations are 7-dimensional:
//
//	[
//		end-effector position (3)
//		end-effector velocity (3)
//		finger width
//	]
type Robot struct {
	sim     simulation.Backend
	control ControlType
	base    r3.Vec
	object  string

	// joints holds the end-effector position relative to the base
	joints   r3.Vec
	velocity r3.Vec
	fingers  float64
	grasped  bool
}

// NewRobot returns a new Robot whose base is at base. The Robot is able
// to grasp the named object, which must already exist in sim.
func NewRobot(sim simulation.Backend, control ControlType, base r3.Vec,
	object string) (*Robot, error) {
	if control != EE && control != Joints {
		return nil, fmt.Errorf("newRobot: no such control type %q", control)
	}

	r := &Robot{
		sim:     sim,
		control: control,
		base:    base,
		object:  object,
	}

	sim.NoRendering(func() {
		sim.CreateBox(simulation.Box{
			Name:        EEBody,
			HalfExtents: r3.Vec{X: 0.01, Y: 0.01, Z: 0.01},
			Ghost:       true,
			Position:    r3.Add(base, neutralJoints),
			RGBA:        [4]float64{0.9, 0.9, 0.9, 0.8},
		})
	})
	r.Reset()

	return r, nil
}

// ControlType returns the control type of the Robot
func (r *Robot) ControlType() ControlType {
	return r.control
}

// Reset moves the robot to its neutral pose with the gripper open
func (r *Robot) Reset() {
	r.joints = neutralJoints
	r.velocity = r3.Vec{}
	r.fingers = MaxFingerWidth
	r.grasped = false
	r.sim.SetBasePose(EEBody, r.EEPosition(), simulation.Identity)
}

// SetAction applies an action to the robot. The simulation is not
// stepped.
func (r *Robot) SetAction(action *mat.VecDense) {
	if action.Len() != ActionLen {
		panic(fmt.Sprintf("setAction: action must have length %v, got %v",
			ActionLen, action.Len()))
	}

	a := floatutils.ClipSlice(mat.Col(nil, 0, action), -1.0, 1.0)
	displacement := r3.Scale(MaxDisplacement, r3.Vec{X: a[0], Y: a[1], Z: a[2]})

	prev := r.EEPosition()
	switch r.control {
	case EE:
		ee := clipVec(r3.Add(prev, displacement), workspace)
		r.joints = r3.Sub(ee, r.base)

	case Joints:
		r.joints = clipVec(r3.Add(r.joints, displacement), jointLimits())
	}
	ee := r.EEPosition()
	r.velocity = r3.Scale(1/r.sim.Timestep(), r3.Sub(ee, prev))
	r.sim.SetBasePose(EEBody, ee, simulation.Identity)

	r.fingers = floatutils.Clip(r.fingers+MaxFingerChange*a[3], 0,
		MaxFingerWidth)
	r.updateGrasp()
}

// updateGrasp grasps, carries or releases the object
func (r *Robot) updateGrasp() {
	ee := r.EEPosition()

	if !r.grasped {
		near := Distance(ee, r.sim.BasePosition(r.object)) < GraspRadius
		if near && r.fingers <= ObjectSize {
			r.grasped = true
		}
	} else if r.fingers > ObjectSize {
		// Released objects keep the velocity of the end-effector
		r.grasped = false
		r.sim.SetBaseVelocity(r.object, r.velocity, r3.Vec{})
		return
	}

	if r.grasped {
		// The fingers cannot close past the object
		r.fingers = ObjectSize
		r.sim.SetBasePose(r.object, ee, r.sim.BaseRotation(r.object))
		r.sim.SetBaseVelocity(r.object, r.velocity, r3.Vec{})
	}
}

// Grasped returns whether the robot holds the object
func (r *Robot) Grasped() bool {
	return r.grasped
}

// EEPosition returns the position of the end-effector
func (r *Robot) EEPosition() r3.Vec {
	return r3.Add(r.base, r.joints)
}

// EEVelocity returns the velocity of the end-effector over the last
// action
func (r *Robot) EEVelocity() r3.Vec {
	return r.velocity
}

// FingersWidth returns the distance between the fingers
func (r *Robot) FingersWidth() float64 {
	return r.fingers
}

// Joints returns the values of the prismatic joints
func (r *Robot) Joints() r3.Vec {
	return r.joints
}

// Observation returns the robot's observation
func (r *Robot) Observation() []float64 {
	pos := r.EEPosition()
	vel := r.EEVelocity()

	return []float64{pos.X, pos.Y, pos.Z, vel.X, vel.Y, vel.Z, r.fingers}
}

// ActionSpec returns the action specification of the robot
func (r *Robot) ActionSpec() environment.Spec {
	low := make([]float64, ActionLen)
	high := make([]float64, ActionLen)
	for i := range low {
		low[i] = -1.0
		high[i] = 1.0
	}

	return environment.NewSpec(mat.NewVecDense(ActionLen, nil),
		environment.Action, mat.NewVecDense(ActionLen, low),
		mat.NewVecDense(ActionLen, high), environment.Continuous)
}

// jointLimits returns the limits of the prismatic joints. The limits
// keep the end-effector inside the workspace of a robot based at
// (-0.6, 0, 0).
func jointLimits() [3]r1.Interval {
	return [3]r1.Interval{
		{Min: 0.0, Max: 1.2},
		{Min: -0.5, Max: 0.5},
		{Min: 0.0, Max: 0.6},
	}
}

// clipVec clips each component of v to its interval
func clipVec(v r3.Vec, bounds [3]r1.Interval) r3.Vec {
	return r3.Vec{
		X: floatutils.ClipInterval(v.X, bounds[0]),
		Y: floatutils.ClipInterval(v.Y, bounds[1]),
		Z: floatutils.ClipInterval(v.Z, bounds[2]),
	}
}
