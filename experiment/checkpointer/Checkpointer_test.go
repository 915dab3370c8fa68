package checkpointer_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samuelfneumann/gopanda/experiment/checkpointer"
)

type recorder struct {
	paths []string
	err   error
}

func (r *recorder) Save(path string) error {
	r.paths = append(r.paths, path)
	return r.err
}

func TestNStep(t *testing.T) {
	r := &recorder{}
	c := checkpointer.NewNStep(100, r, checkpointer.StepNamer("ckpt",
		"PandaPickAndPlaceAndThrow-v1"))

	for i := 0; i <= 350; i++ {
		if err := c.Checkpoint(i); err != nil {
			t.Fatalf("checkpoint: %v", err)
		}
	}

	want := []string{
		filepath.Join("ckpt", "PandaPickAndPlaceAndThrow-v1_100_steps"),
		filepath.Join("ckpt", "PandaPickAndPlaceAndThrow-v1_200_steps"),
		filepath.Join("ckpt", "PandaPickAndPlaceAndThrow-v1_300_steps"),
	}
	if len(r.paths) != len(want) {
		t.Fatalf("checkpoint: expected %v checkpoints, got %v", len(want),
			r.paths)
	}
	for i := range want {
		if r.paths[i] != want[i] {
			t.Errorf("checkpoint: expected %v, got %v", want[i], r.paths[i])
		}
	}
}

func TestNStepError(t *testing.T) {
	r := &recorder{err: errors.New("disk full")}
	c := checkpointer.NewNStep(1, r, checkpointer.EnumerateNamer("ckpt",
		"agent"))

	if err := c.Checkpoint(1); err == nil {
		t.Error("checkpoint: should return the save error")
	}
}

func TestNamers(t *testing.T) {
	at := time.Unix(0, 1234)
	now := func() time.Time { return at }

	tests := []struct {
		name  string
		namer func(int) string
		want  []string
	}{
		{
			"Steps",
			checkpointer.StepNamer("ckpt", "agent"),
			[]string{"agent_100_steps", "agent_200_steps"},
		},
		{
			"Enumerate",
			checkpointer.EnumerateNamer("ckpt", "agent"),
			[]string{"agent_1", "agent_2"},
		},
		{
			"Time",
			checkpointer.TimeNamer("ckpt", "agent", now),
			[]string{"agent_1234", "agent_1234"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for i, want := range test.want {
				got := test.namer(100 * (i + 1))
				if got != filepath.Join("ckpt", want) {
					t.Errorf("namer: expected %v, got %v",
						filepath.Join("ckpt", want), got)
				}
			}
		})
	}
}

func TestNewNamer(t *testing.T) {
	for _, s := range []string{"steps", "enumerate", "time"} {
		naming, err := checkpointer.ParseNaming(s)
		if err != nil {
			t.Fatalf("parseNaming(%v): %v", s, err)
		}
		namer, err := checkpointer.NewNamer(naming, "ckpt", "agent")
		if err != nil {
			t.Fatalf("newNamer(%v): %v", naming, err)
		}
		if name := namer(10); !strings.HasPrefix(name,
			filepath.Join("ckpt", "agent_")) {
			t.Errorf("newNamer(%v): unexpected name %v", naming, name)
		}
	}

	if _, err := checkpointer.ParseNaming("random"); err == nil {
		t.Error("parseNaming: unknown naming should fail")
	}
	if _, err := checkpointer.NewNamer("random", "ckpt", "agent"); err == nil {
		t.Error("newNamer: unknown naming should fail")
	}
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2023, time.March, 4, 15, 7, 0, 0, time.UTC)
	if got := checkpointer.Timestamp(ts); got != "20230304-1507" {
		t.Errorf("timestamp: expected 20230304-1507, got %v", got)
	}
}
