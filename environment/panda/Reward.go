package panda

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	ts "github.com/samuelfneumann/gopanda/timestep"
)

// RewardType determines whether rewards are sparse or dense
type RewardType string

const (
	Sparse RewardType = "sparse"
	Dense  RewardType = "dense"
)

// ParseRewardType returns the RewardType named by s
func ParseRewardType(s string) (RewardType, error) {
	switch RewardType(s) {
	case Sparse, Dense:
		return RewardType(s), nil
	}
	return "", fmt.Errorf("parseRewardType: no such reward type %q", s)
}

const (
	// GripperRadius is the distance to the goal within which the
	// gripper is penalised
	GripperRadius float64 = 0.05

	// GripperPenalty is subtracted from dense rewards while the gripper
	// is within GripperRadius of the goal
	GripperPenalty float64 = 2.0
)

// Infos holds the auxiliary step information passed to a reward
// function, either for a single step or for a batch of steps. The caller
// chooses which by passing a Single or a Batch.
type Infos interface {
	Len() int
	At(i int) ts.Info
	isInfos()
}

// Single is the step information of a single step
type Single struct {
	ts.Info
}

// Len implements the Infos interface
func (Single) Len() int { return 1 }

// At implements the Infos interface
func (s Single) At(i int) ts.Info {
	if i != 0 {
		panic(fmt.Sprintf("at: index %v out of range for single info", i))
	}
	return s.Info
}

func (Single) isInfos() {}

// Batch is the step information of a batch of steps
type Batch []ts.Info

// Len implements the Infos interface
func (b Batch) Len() int { return len(b) }

// At implements the Infos interface
func (b Batch) At(i int) ts.Info { return b[i] }

func (Batch) isInfos() {}

// Distance returns the Euclidean distance between two goals
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// IsSuccess returns 1.0 if the distance between two goals is within the
// threshold and 0.0 otherwise
func IsSuccess(d, threshold float64) float64 {
	if d < threshold {
		return 1.0
	}
	return 0.0
}

// SparseReward returns -1 unless the goal is reached, in which case it
// returns 0
func SparseReward(d, threshold float64) float64 {
	return IsSuccess(d, threshold) - 1.0
}

// GripperPenaltyOf returns the gripper penalty for a step. The info must
// hold the gripper distance.
func GripperPenaltyOf(info ts.Info) float64 {
	if info.Get(ts.GripperDistance) < GripperRadius {
		return GripperPenalty
	}
	return 0.0
}

// ThrowReward returns the reward of the pick-and-place-and-throw task.
// Dense rewards are the negative distance to the goal, less a penalty
// for keeping the gripper at the goal. The gripper distance is looked up
// for both reward types.
func ThrowReward(rewardType RewardType, d, threshold float64,
	info ts.Info) float64 {
	penalty := GripperPenaltyOf(info)

	if rewardType == Sparse {
		return SparseReward(d, threshold)
	}
	return -d - penalty
}

// MoveReward returns the reward of the pick-and-place-and-move task.
// Dense rewards are the negative distance to the goal.
func MoveReward(rewardType RewardType, d, threshold float64) float64 {
	if rewardType == Sparse {
		return SparseReward(d, threshold)
	}
	return -d
}
