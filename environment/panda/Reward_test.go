package panda

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	ts "github.com/samuelfneumann/gopanda/timestep"
)

func TestDistance(t *testing.T) {
	a := r3.Vec{X: 1, Y: 2, Z: 3}
	b := r3.Vec{X: 4, Y: 6, Z: 3}

	if d := Distance(a, b); d != 5.0 {
		t.Errorf("distance: should be 5, got %v", d)
	}
	if Distance(a, b) != Distance(b, a) {
		t.Error("distance: should be symmetric")
	}
}

func TestSparseReward(t *testing.T) {
	const threshold = 0.05

	tests := []struct {
		d       float64
		success float64
		reward  float64
	}{
		{0.0, 1.0, 0.0},
		{0.04, 1.0, 0.0},
		{0.05, 0.0, -1.0},
		{0.06, 0.0, -1.0},
		{10.0, 0.0, -1.0},
	}

	for _, test := range tests {
		if s := IsSuccess(test.d, threshold); s != test.success {
			t.Errorf("isSuccess: distance %v should give %v, got %v",
				test.d, test.success, s)
		}
		if r := SparseReward(test.d, threshold); r != test.reward {
			t.Errorf("sparseReward: distance %v should give %v, got %v",
				test.d, test.reward, r)
		}
	}
}

func TestSuccessMonotonic(t *testing.T) {
	const threshold = 0.05

	prev := IsSuccess(1.0, threshold)
	for d := 1.0; d >= 0; d -= 0.001 {
		s := IsSuccess(d, threshold)
		if s < prev {
			t.Fatalf("isSuccess: success dropped from %v to %v at distance "+
				"%v", prev, s, d)
		}
		prev = s
	}
}

func TestThrowReward(t *testing.T) {
	tests := []struct {
		name       string
		rewardType RewardType
		d          float64
		gripper    float64
		want       float64
	}{
		{"DenseFar", Dense, 0.3, 0.2, -0.3},
		{"DenseGripperAtGoal", Dense, 0.3, 0.01, -2.3},
		{"DenseGripperAtRadius", Dense, 0.1, GripperRadius, -0.1},
		{"SparseGripperAtGoal", Sparse, 0.01, 0.01, 0.0},
		{"SparseFar", Sparse, 0.3, 0.01, -1.0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			info := ts.Info{ts.GripperDistance: test.gripper}
			r := ThrowReward(test.rewardType, test.d, 0.05, info)
			if r != test.want {
				t.Errorf("throwReward: should be %v, got %v", test.want, r)
			}
		})
	}
}

func TestThrowRewardMissingGripperDistance(t *testing.T) {
	for _, rewardType := range []RewardType{Sparse, Dense} {
		t.Run(string(rewardType), func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("throwReward: should panic without gripper " +
						"distance")
				}
			}()
			ThrowReward(rewardType, 0.1, 0.05, ts.Info{ts.IsSuccess: 0})
		})
	}
}

func TestMoveReward(t *testing.T) {
	if r := MoveReward(Dense, 0.3, 0.05); r != -0.3 {
		t.Errorf("moveReward: dense reward should be -0.3, got %v", r)
	}
	if r := MoveReward(Sparse, 0.3, 0.05); r != -1.0 {
		t.Errorf("moveReward: sparse reward should be -1, got %v", r)
	}
	if r := MoveReward(Sparse, 0.01, 0.05); r != 0.0 {
		t.Errorf("moveReward: sparse reward should be 0, got %v", r)
	}

	// The move task never looks at the gripper
	task, _ := newTestTask(Move, Dense)
	r := task.Reward(r3.Vec{}, r3.Vec{Z: 0.01}, ts.Info{ts.IsSuccess: 1})
	if r != -0.01 {
		t.Errorf("reward: should be -0.01, got %v", r)
	}
}

func TestInfos(t *testing.T) {
	single := Single{ts.Info{ts.IsSuccess: 1}}
	if single.Len() != 1 {
		t.Errorf("single: length should be 1, got %v", single.Len())
	}
	if single.At(0).Get(ts.IsSuccess) != 1 {
		t.Error("single: wrong info returned")
	}

	batch := Batch{{ts.IsSuccess: 0}, {ts.IsSuccess: 1}, {ts.IsSuccess: 0}}
	if batch.Len() != 3 {
		t.Errorf("batch: length should be 3, got %v", batch.Len())
	}
	if batch.At(1).Get(ts.IsSuccess) != 1 {
		t.Error("batch: wrong info returned")
	}

	defer func() {
		if recover() == nil {
			t.Error("single: At(1) should panic")
		}
	}()
	single.At(1)
}

func TestParseRewardType(t *testing.T) {
	for _, s := range []string{"sparse", "dense"} {
		if r, err := ParseRewardType(s); err != nil || string(r) != s {
			t.Errorf("parseRewardType: could not parse %v: %v", s, err)
		}
	}
	if _, err := ParseRewardType("shaped"); err == nil {
		t.Error("parseRewardType: should not parse unknown reward types")
	}
}
