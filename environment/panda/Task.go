package panda

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gopanda/simulation"
	ts "github.com/samuelfneumann/gopanda/timestep"
)

// Names of the bodies created by a Task
const (
	ObjectBody   string = "object"
	TargetBody   string = "target"
	PlatformBody string = "moving_platform"
)

const (
	// PlatformStep is the distance the platform travels along y on each
	// tick
	PlatformStep float64 = 0.003

	// TravelBound bounds the platform's y coordinate. The platform
	// turns around once it passes either ±TravelBound.
	TravelBound float64 = 0.25

	// TargetOffset is the height of the target above the platform
	TargetOffset float64 = 0.04

	// ObjectSize is the side length of the object
	ObjectSize float64 = 0.04

	// TaskObservationLen is the length of a Task's observation
	TaskObservationLen int = 26
)

var (
	platformStart = r3.Vec{X: 0.15, Y: 0.0, Z: 0.2}
	targetStart   = r3.Vec{X: 0.0, Y: 0.0, Z: 0.05}
	objectStart   = r3.Vec{X: 0.0, Y: 0.0, Z: ObjectSize / 2}
)

// Direction is the direction of travel of the moving platform
type Direction int

const (
	Backward Direction = iota // -y
	Forward                   // +y
)

func (d Direction) String() string {
	if d == Forward {
		return "Forward"
	}
	return "Backward"
}

// sign returns the sign of the platform's displacement along y
func (d Direction) sign() float64 {
	if d == Forward {
		return 1.0
	}
	return -1.0
}

// Variant determines which of the moving-platform tasks a Task solves
type Variant int

const (
	// Throw is the pick-and-place-and-throw task, whose dense reward
	// penalises keeping the gripper at the goal
	Throw Variant = iota

	// Move is the pick-and-place-and-move task, whose dense reward is
	// the negative distance to the goal
	Move
)

func (v Variant) String() string {
	switch v {
	case Throw:
		return "Throw"
	case Move:
		return "Move"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// TaskConfig configures a Task
type TaskConfig struct {
	RewardType        RewardType
	DistanceThreshold float64
	ObjXYRange        float64
}

// DefaultTaskConfig returns the default Task configuration
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		RewardType:        Sparse,
		DistanceThreshold: 0.05,
		ObjXYRange:        0.3,
	}
}

// Task is a moving-platform pick-and-place task. A platform travels back
// and forth along the y axis carrying a ghost target, and the object
// must be brought to the target. The object is carried along by the
// platform while the two touch.
//
// The goal of the task is always the position of the target and the
// achieved goal is always the position of the object.
type Task struct {
	variant Variant
	sim     simulation.Backend

	rewardType        RewardType
	distanceThreshold float64
	objRange          float64

	direction Direction
	goal      r3.Vec
}

// NewTask creates the scene of the task in sim and returns the Task
func NewTask(sim simulation.Backend, variant Variant, c TaskConfig) *Task {
	if c.DistanceThreshold <= 0 {
		panic(fmt.Sprintf("newTask: distance threshold must be positive, "+
			"got %v", c.DistanceThreshold))
	}

	t := &Task{
		variant:           variant,
		sim:               sim,
		rewardType:        c.RewardType,
		distanceThreshold: c.DistanceThreshold,
		objRange:          c.ObjXYRange,
		direction:         Forward,
		goal:              targetStart,
	}

	sim.NoRendering(func() {
		t.createScene()
		sim.PlaceVisualizer(r3.Vec{}, 0.9, 45, -30)
	})

	return t
}

func (t *Task) createScene() {
	t.sim.CreatePlane(-0.4)
	t.sim.CreateTable(1.1, 0.7, 0.4, -0.3)

	half := ObjectSize / 2
	t.sim.CreateBox(simulation.Box{
		Name:        ObjectBody,
		HalfExtents: r3.Vec{X: half, Y: half, Z: half},
		Mass:        1.0,
		Position:    objectStart,
		RGBA:        [4]float64{0.1, 0.9, 0.1, 1.0},
	})
	t.sim.CreateBox(simulation.Box{
		Name:        TargetBody,
		HalfExtents: r3.Vec{X: half, Y: half, Z: half},
		Ghost:       true,
		Position:    targetStart,
		RGBA:        [4]float64{0.1, 0.9, 0.1, 0.3},
	})
	t.sim.CreateBox(simulation.Box{
		Name:        PlatformBody,
		HalfExtents: r3.Vec{X: 0.1, Y: 0.1, Z: 0.01},
		Position:    platformStart,
		RGBA:        [4]float64{0.5, 0.2, 0.2, 1.0},
	})
}

// Variant returns the variant of the Task
func (t *Task) Variant() Variant {
	return t.variant
}

// RewardType returns the reward type of the Task
func (t *Task) RewardType() RewardType {
	return t.rewardType
}

// DistanceThreshold returns the distance within which the goal counts as
// reached
func (t *Task) DistanceThreshold() float64 {
	return t.distanceThreshold
}

// Direction returns the platform's current direction of travel
func (t *Task) Direction() Direction {
	return t.direction
}

// SetDirection sets the platform's direction of travel
func (t *Task) SetDirection(d Direction) {
	t.direction = d
}

// Advance moves the platform and target one step in the direction of
// travel, carries the object along if it touches the platform, and turns
// the platform around once it passes a travel bound. Advance should be
// called once before every simulation step.
func (t *Task) Advance() {
	step := t.direction.sign() * PlatformStep

	platform := t.sim.BasePosition(PlatformBody)
	target := t.sim.BasePosition(TargetBody)
	platform.Y += step
	target.Y += step
	t.sim.SetBasePose(PlatformBody, platform, simulation.Identity)
	t.sim.SetBasePose(TargetBody, target, simulation.Identity)

	t.goal = t.sim.BasePosition(TargetBody)

	if len(t.sim.ContactPoints(ObjectBody, PlatformBody)) > 0 {
		object := t.sim.BasePosition(ObjectBody)
		object.Y += step
		t.sim.SetBasePose(ObjectBody, object, t.sim.BaseRotation(ObjectBody))
	}

	if platform.Y > TravelBound {
		t.direction = Backward
	} else if platform.Y < -TravelBound {
		t.direction = Forward
	}
}

// Reset places the platform, target and object at new starting positions
// perturbed by noise. The direction of travel is not changed.
func (t *Task) Reset(noise Noise) {
	dy, dz := noise.PlatformOffset()
	platform := r3.Add(platformStart, r3.Vec{Y: dy, Z: dz})

	t.goal = r3.Add(platform, r3.Vec{Z: TargetOffset})

	object := r3.Add(objectStart, noise.ObjectOffset())

	t.sim.SetBasePose(TargetBody, t.goal, simulation.Identity)
	t.sim.SetBasePose(PlatformBody, platform, simulation.Identity)
	t.sim.SetBasePose(ObjectBody, object, simulation.Identity)
}

// Observation returns the task observation:
//
//	[
//		object position (3)
//		object rotation (4, x y z w)
//		object velocity (3)
//		object angular velocity (3)
//		platform position (3)
//		platform rotation (4, x y z w)
//		platform velocity (3)
//		platform angular velocity (3)
//	]
//
// The platform fields are read from the object body, so they repeat the
// object fields. Learners trained on these environments expect this
// layout.
func (t *Task) Observation() []float64 {
	obs := make([]float64, 0, TaskObservationLen)
	for i := 0; i < 2; i++ {
		pos := t.sim.BasePosition(ObjectBody)
		vel := t.sim.BaseVelocity(ObjectBody)
		angVel := t.sim.BaseAngularVelocity(ObjectBody)

		obs = append(obs, pos.X, pos.Y, pos.Z)
		obs = append(obs, t.sim.BaseRotation(ObjectBody).Slice()...)
		obs = append(obs, vel.X, vel.Y, vel.Z)
		obs = append(obs, angVel.X, angVel.Y, angVel.Z)
	}

	return obs
}

// AchievedGoal returns the position of the object
func (t *Task) AchievedGoal() r3.Vec {
	return t.sim.BasePosition(ObjectBody)
}

// Goal returns the position of the target as of the last call to Advance
// or Reset
func (t *Task) Goal() r3.Vec {
	return t.goal
}

// IsSuccess returns 1.0 if the achieved goal is within the distance
// threshold of the desired goal and 0.0 otherwise
func (t *Task) IsSuccess(achieved, desired r3.Vec) float64 {
	return IsSuccess(Distance(achieved, desired), t.distanceThreshold)
}

// Reward returns the reward for a single achieved and desired goal
func (t *Task) Reward(achieved, desired r3.Vec, info ts.Info) float64 {
	d := Distance(achieved, desired)

	switch t.variant {
	case Throw:
		return ThrowReward(t.rewardType, d, t.distanceThreshold, info)
	case Move:
		return MoveReward(t.rewardType, d, t.distanceThreshold)
	}
	panic(fmt.Sprintf("reward: unknown variant %v", t.variant))
}

// ComputeReward computes the rewards of a batch of goals. Each row of
// achieved and desired is a 3-dimensional goal, and the i-th row is
// paired with infos.At(i). The number of rows must equal infos.Len().
func (t *Task) ComputeReward(achieved, desired mat.Matrix,
	infos Infos) *mat.VecDense {
	rows, cols := achieved.Dims()
	dRows, dCols := desired.Dims()
	if rows != dRows || cols != 3 || dCols != 3 {
		panic(fmt.Sprintf("computeReward: goals must be n × 3, got %v × %v "+
			"and %v × %v", rows, cols, dRows, dCols))
	}
	if rows != infos.Len() {
		panic(fmt.Sprintf("computeReward: %v goals but %v infos", rows,
			infos.Len()))
	}

	rewards := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		a := r3.Vec{X: achieved.At(i, 0), Y: achieved.At(i, 1),
			Z: achieved.At(i, 2)}
		d := r3.Vec{X: desired.At(i, 0), Y: desired.At(i, 1),
			Z: desired.At(i, 2)}
		rewards.SetVec(i, t.Reward(a, d, infos.At(i)))
	}

	return rewards
}

// vec converts an r3.Vec to a *mat.VecDense
func vec(v r3.Vec) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
}
