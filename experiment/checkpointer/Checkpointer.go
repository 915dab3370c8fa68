// Package checkpointer implements Checkpointers, which periodically save
// objects during an experiment
package checkpointer

// Saver is an object that can save itself to a path
type Saver interface {
	Save(path string) error
}

// Checkpointer checkpoints/saves objects based on the total number of
// steps taken in an experiment
type Checkpointer interface {
	Checkpoint(totalSteps int) error
}
