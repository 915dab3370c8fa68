// Package progressbar implements functionality of printing a progress
// bar to a terminal
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressBar implements a concurrent progress bar. The bar is redrawn
// by a background goroutine on a fixed interval, so that Increment can
// be called from a tight loop without slowing it down.
type ProgressBar struct {
	out io.Writer

	// width determines the number of characters wide that the progress
	// bar should be
	width int

	// maxProgress determines the number of times Increment() should
	// be called before the progress bar reaches 100%.
	maxProgress int

	mu sync.Mutex

	// currentProgress measures the number of times Increment() was
	// called, up to maxProgress
	currentProgress int
	startTime       time.Time

	updateEvery time.Duration
	closeEvent  chan struct{}
	done        chan struct{}
	closed      bool
}

// NewProgressBar returns a new progress bar that is width characters
// wide and reaches 100% capacity after max Increment() calls. The bar
// is redrawn on out every updateEvery once Display is called.
func NewProgressBar(out io.Writer, width, max int,
	updateEvery time.Duration) *ProgressBar {
	if max <= 0 {
		max = 1
	}
	return &ProgressBar{
		out:         out,
		width:       width,
		maxProgress: max,
		updateEvery: updateEvery,
		closeEvent:  make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Progress returns the number of recorded increments
func (p *ProgressBar) Progress() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.currentProgress
}

// Display starts redrawing the progress bar in the background. It
// should only be called once.
func (p *ProgressBar) Display() {
	p.mu.Lock()
	p.startTime = time.Now()
	p.mu.Unlock()

	go func() {
		defer close(p.done)

		tick := time.NewTicker(p.updateEvery)
		defer tick.Stop()

		for {
			select {
			case <-tick.C:
				p.draw()

			case <-p.closeEvent:
				p.draw()
				return
			}
		}
	}()
}

// Close stops redrawing the progress bar after drawing it a final time.
// Close panics if called twice.
func (p *ProgressBar) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("close: close on closed progress bar")
	}
	p.closed = true
	p.mu.Unlock()

	close(p.closeEvent)
	<-p.done
	fmt.Fprintln(p.out) // Jump to next line after printed bar
}

func (p *ProgressBar) draw() {
	p.mu.Lock()
	current, start := p.currentProgress, p.startTime
	p.mu.Unlock()

	bar := render(p.width, current, p.maxProgress, time.Since(start))
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", bar)
}

// render returns the text of a progress bar width characters wide
func render(width, current, max int, elapsed time.Duration) string {
	var bar strings.Builder
	bar.WriteString("|")

	filled := current * width / max
	bar.WriteString(strings.Repeat("█", filled))
	bar.WriteString(strings.Repeat(" ", width-filled))

	fmt.Fprintf(&bar, "| [%.2f%% | %v/%v | elapsed: %v]",
		float64(current)/float64(max)*100, current, max,
		elapsed.Truncate(time.Second))

	return bar.String()
}
