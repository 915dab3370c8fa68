package checkpointer

import "fmt"

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	object   Saver // Object to save

	// filename returns the filename of the file to save the object in
	// after the given number of total steps. Namers for each Naming are
	// returned by NewNamer, for example:
	//
	// n := NewNStep(10, object, StepNamer("checkpoints", "agent"))
	filename func(int) string
}

// NewNStep returns a checkpointer that checkpoints every n steps.
func NewNStep(n int, object Saver, filename func(int) string) Checkpointer {
	if n <= 0 {
		panic(fmt.Sprintf("newNStep: interval must be positive, got %v", n))
	}
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}
}

// Checkpoint checkpoints the Checkpointer's tracked object by calling
// its Save() method
func (n *nStep) Checkpoint(totalSteps int) error {
	if totalSteps > 0 && totalSteps%n.interval == 0 {
		if err := n.object.Save(n.filename(totalSteps)); err != nil {
			return fmt.Errorf("checkpoint: %v", err)
		}
	}
	return nil
}
