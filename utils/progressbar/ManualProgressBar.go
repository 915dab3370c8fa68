package progressbar

import (
	"fmt"
	"io"
	"time"
)

// ManualProgressBar implements progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed.
//
// ManualProgressBar does not use concurrency.
type ManualProgressBar struct {
	out             io.Writer
	width           int
	maxProgress     int
	currentProgress int
	startTime       time.Time
}

// NewManualProgressBar returns a new ManualProgressBar which prints to
// out
func NewManualProgressBar(out io.Writer, width, max int) *ManualProgressBar {
	if max <= 0 {
		max = 1
	}
	return &ManualProgressBar{
		out:         out,
		width:       width,
		maxProgress: max,
		startTime:   time.Now(),
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Display prints the current progress bar
func (p *ManualProgressBar) Display() {
	bar := render(p.width, p.currentProgress, p.maxProgress,
		time.Since(p.startTime))
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", bar)
}
