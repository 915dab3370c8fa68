package trackers_test

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/gopanda/experiment/trackers"
	ts "github.com/samuelfneumann/gopanda/timestep"
)

// episode returns the timesteps of an episode of length n with reward
// -1 on each step, ending in success if success is true
func episode(n int, success bool) []ts.TimeStep {
	steps := make([]ts.TimeStep, n+1)
	steps[0] = ts.New(ts.First, 0, 1, nil, nil, nil, ts.Info{}, 0)
	for i := 1; i <= n; i++ {
		stepType := ts.Mid
		info := ts.Info{ts.IsSuccess: 0}
		if i == n {
			stepType = ts.Last
			if success {
				info[ts.IsSuccess] = 1
			}
		}
		steps[i] = ts.New(stepType, -1, 1, nil, nil, nil, info, i)
	}
	return steps
}

func TestTrackers(t *testing.T) {
	dir := t.TempDir()

	ret := trackers.NewReturn(filepath.Join(dir, "return.bin"))
	length := trackers.NewEpisodeLength(filepath.Join(dir, "length.bin"))
	success := trackers.NewSuccess(filepath.Join(dir, "success.bin"))
	all := []trackers.Tracker{ret, length, success}

	var steps []ts.TimeStep
	steps = append(steps, episode(50, false)...)
	steps = append(steps, episode(20, true)...)
	steps = append(steps, episode(5, true)...)

	// Unfinished episodes are not recorded
	steps = append(steps, episode(10, false)[:4]...)

	for _, step := range steps {
		for _, tracker := range all {
			tracker.Track(step)
		}
	}

	tests := []struct {
		name     string
		tracker  trackers.Tracker
		filename string
		want     []float64
	}{
		{"Return", ret, "return.bin", []float64{-50, -20, -5}},
		{"EpisodeLength", length, "length.bin", []float64{50, 20, 5}},
		{"Success", success, "success.bin", []float64{0, 1, 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.tracker.Save(); err != nil {
				t.Fatalf("save: %v", err)
			}

			data, err := trackers.LoadData(filepath.Join(dir, test.filename))
			if err != nil {
				t.Fatalf("loadData: %v", err)
			}
			if !floats.Equal(data, test.want) {
				t.Errorf("loadData: expected %v, got %v", test.want, data)
			}
		})
	}

	if rate := success.Rate(); !floats.EqualApprox([]float64{rate},
		[]float64{2.0 / 3.0}, 1e-12) {
		t.Errorf("rate: expected 2/3, got %v", rate)
	}
}

func TestReturnNonSequential(t *testing.T) {
	ret := trackers.NewReturn("")
	steps := episode(5, false)

	defer func() {
		if recover() == nil {
			t.Error("track: should panic on non-sequential timesteps")
		}
	}()
	ret.Track(steps[0])
	ret.Track(steps[2])
}

func TestLoadDataMissing(t *testing.T) {
	if _, err := trackers.LoadData(filepath.Join(t.TempDir(),
		"missing.bin")); err == nil {
		t.Error("loadData: should fail for missing files")
	}
}
