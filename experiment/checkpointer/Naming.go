package checkpointer

import (
	"fmt"
	"path/filepath"
	"time"
)

// TimestampLayout is the layout of the timestamps in run names
const TimestampLayout string = "20060102-1504"

// Timestamp formats t with TimestampLayout
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Naming determines how the checkpoints of a run are named
type Naming string

const (
	// StepNaming names checkpoints after the total steps taken, e.g.
	// agent_100000_steps
	StepNaming Naming = "steps"

	// EnumerateNaming numbers checkpoints consecutively from 1, e.g.
	// agent_1, agent_2
	EnumerateNaming Naming = "enumerate"

	// TimeNaming names checkpoints after the time they were taken, in
	// nanoseconds since January 1, 1970, e.g. agent_1700000000000000000
	TimeNaming Naming = "time"
)

// ParseNaming returns the Naming named by s
func ParseNaming(s string) (Naming, error) {
	switch Naming(s) {
	case StepNaming, EnumerateNaming, TimeNaming:
		return Naming(s), nil
	}
	return "", fmt.Errorf("parseNaming: no such checkpoint naming %q, "+
		"expected one of %v, %v or %v", s, StepNaming, EnumerateNaming,
		TimeNaming)
}

// NewNamer returns a function naming the checkpoints saved in dir,
// each starting with prefix, according to naming
func NewNamer(naming Naming, dir, prefix string) (func(int) string,
	error) {
	switch naming {
	case StepNaming:
		return StepNamer(dir, prefix), nil
	case EnumerateNaming:
		return EnumerateNamer(dir, prefix), nil
	case TimeNaming:
		return TimeNamer(dir, prefix, time.Now), nil
	}
	return nil, fmt.Errorf("newNamer: no such checkpoint naming %q", naming)
}

// StepNamer returns a function which names the checkpoint taken after
// n steps as dir/prefix_n_steps
func StepNamer(dir, prefix string) func(int) string {
	return func(n int) string {
		return filepath.Join(dir, fmt.Sprintf("%v_%v_steps", prefix, n))
	}
}

// EnumerateNamer returns a function which names the k-th checkpoint it
// is asked for dir/prefix_k. The step count is ignored.
func EnumerateNamer(dir, prefix string) func(int) string {
	k := 0
	return func(int) string {
		k++
		return filepath.Join(dir, fmt.Sprintf("%v_%v", prefix, k))
	}
}

// TimeNamer returns a function which names each checkpoint after the
// time now reports when it is taken. The step count is ignored.
func TimeNamer(dir, prefix string, now func() time.Time) func(int) string {
	return func(int) string {
		return filepath.Join(dir, fmt.Sprintf("%v_%v", prefix,
			now().UnixNano()))
	}
}
