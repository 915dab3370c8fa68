// Package panda implements goal-conditioned pick-and-place environments
// in which a Panda arm must bring an object to a target carried by a
// moving platform.
//
// Two environments are provided, selected by the Variant. In the Throw
// variant the dense reward penalises the gripper for staying near the
// goal, so that the object is best thrown onto the platform. In the Move
// variant the dense reward is the negative distance from the object to
// the goal.
//
// Observations are the concatenation of the Robot's observation and the
// Task's observation. The achieved goal is the position of the object
// and the desired goal is the position of the target above the platform.
package panda

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/gopanda/environment"
	"github.com/samuelfneumann/gopanda/simulation"
	ts "github.com/samuelfneumann/gopanda/timestep"
)

// ObservationLen is the length of an Env's observations
const ObservationLen int = RobotObservationLen + TaskObservationLen

// RobotBase is the position of the base of the robot
var RobotBase = r3.Vec{X: -0.6, Y: 0.0, Z: 0.0}

// Config configures an Env
type Config struct {
	Variant     Variant
	ControlType ControlType

	// RewardType is the reward type requested by the caller. Tasks
	// built by New always use dense rewards.
	RewardType RewardType

	EpisodeSteps int
	Discount     float64
	Seed         uint64

	// Noise perturbs the starting positions of each episode. If nil,
	// uniform noise seeded with Seed is used.
	Noise Noise
}

// Env is a moving-platform pick-and-place environment. Env satisfies
// the environment.Environment interface.
type Env struct {
	sim   simulation.Backend
	task  *Task
	robot *Robot

	rng   *rand.Rand
	noise Noise
	environment.Ender
	discount float64

	requestedReward RewardType
	currentTimeStep ts.TimeStep
}

// New returns a new Env on sim, as well as the first step of the first
// episode. The sim should contain no bodies.
func New(sim simulation.Backend, c Config) (*Env, ts.TimeStep, error) {
	if c.EpisodeSteps <= 0 {
		return nil, ts.TimeStep{}, fmt.Errorf("new: episode steps must be "+
			"positive, got %v", c.EpisodeSteps)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return nil, ts.TimeStep{}, fmt.Errorf("new: discount must be in "+
			"[0, 1], got %v", c.Discount)
	}
	if c.Variant != Throw && c.Variant != Move {
		return nil, ts.TimeStep{}, fmt.Errorf("new: unknown variant %v",
			c.Variant)
	}
	if c.RewardType != Sparse && c.RewardType != Dense {
		return nil, ts.TimeStep{}, fmt.Errorf("new: unknown reward type %q",
			c.RewardType)
	}

	// Both environments train their tasks on dense rewards, whatever
	// reward type was asked for
	taskConfig := DefaultTaskConfig()
	taskConfig.RewardType = Dense
	task := NewTask(sim, c.Variant, taskConfig)

	robot, err := NewRobot(sim, c.ControlType, RobotBase, ObjectBody)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	// Directions and the default noise draw from a single stream
	src := rand.NewSource(c.Seed)
	noise := c.Noise
	if noise == nil {
		noise = NewUniformNoise(taskConfig.ObjXYRange, src)
	}

	e := &Env{
		sim:             sim,
		task:            task,
		robot:           robot,
		rng:             rand.New(src),
		noise:           noise,
		Ender:           environment.NewStepLimit(c.EpisodeSteps),
		discount:        c.Discount,
		requestedReward: c.RewardType,
	}

	firstStep, err := e.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return e, firstStep, nil
}

// Task returns the task of the environment
func (e *Env) Task() *Task {
	return e.task
}

// Robot returns the robot of the environment
func (e *Env) Robot() *Robot {
	return e.robot
}

// Backend returns the simulation the environment runs in
func (e *Env) Backend() simulation.Backend {
	return e.sim
}

// RequestedRewardType returns the reward type the environment was
// constructed with. The task's reward type may differ.
func (e *Env) RequestedRewardType() RewardType {
	return e.requestedReward
}

// Reset resets the environment to begin a new episode. The platform's
// direction of travel is chosen uniformly at random.
func (e *Env) Reset() (ts.TimeStep, error) {
	e.task.SetDirection(Direction(e.rng.Intn(2)))

	e.sim.NoRendering(func() {
		e.robot.Reset()
		e.task.Reset(e.noise)
	})

	achieved, desired := e.task.AchievedGoal(), e.task.Goal()
	info := ts.Info{ts.IsSuccess: e.task.IsSuccess(achieved, desired)}

	firstStep := ts.New(ts.First, 0, e.discount, e.observation(),
		vec(achieved), vec(desired), info, 0)
	e.currentTimeStep = firstStep

	return firstStep, nil
}

// Step takes one environmental step given some action. The returned
// boolean indicates whether the episode has ended, which only happens
// once the episode step limit is reached: reaching the goal never ends
// an episode, but the step limit reports done as a time limit would.
func (e *Env) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if action.Len() != ActionLen {
		return ts.TimeStep{}, true, fmt.Errorf("step: action must have "+
			"length %v, got %v", ActionLen, action.Len())
	}

	e.task.Advance()
	e.robot.SetAction(action)
	e.sim.Step()

	achieved, desired := e.task.AchievedGoal(), e.task.Goal()
	info := ts.Info{ts.IsSuccess: e.task.IsSuccess(achieved, desired)}
	if e.task.Variant() == Throw {
		info[ts.GripperDistance] = Distance(e.robot.EEPosition(), desired)
	}
	reward := e.task.Reward(achieved, desired, info)

	t := ts.New(ts.Mid, reward, e.discount, e.observation(), vec(achieved),
		vec(desired), info, e.currentTimeStep.Number+1)
	done := e.End(&t)
	e.currentTimeStep = t

	return t, done, nil
}

// observation returns the robot observation followed by the task
// observation
func (e *Env) observation() *mat.VecDense {
	obs := make([]float64, 0, ObservationLen)
	obs = append(obs, e.robot.Observation()...)
	obs = append(obs, e.task.Observation()...)

	return mat.NewVecDense(ObservationLen, obs)
}

// CurrentTimeStep returns the current time step
func (e *Env) CurrentTimeStep() ts.TimeStep {
	return e.currentTimeStep
}

// ActionSpec returns the action specification of the environment
func (e *Env) ActionSpec() environment.Spec {
	return e.robot.ActionSpec()
}

// ObservationSpec returns the observation specification of the
// environment
func (e *Env) ObservationSpec() environment.Spec {
	return environment.NewUnboundedSpec(ObservationLen, environment.Observation)
}

// GoalSpec returns the specification of achieved and desired goals
func (e *Env) GoalSpec() environment.Spec {
	return environment.NewUnboundedSpec(3, environment.Goal)
}

// DiscountSpec returns the discount specification of the environment
func (e *Env) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{0.})
	upperBound := mat.NewVecDense(1, []float64{1.})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}
