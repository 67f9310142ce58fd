package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports maintenance pass progress to a writer, typically
// os.Stderr. Reports are emitted every reportInterval items and once more
// on Finish.
type ProgressTracker struct {
	mu       sync.Mutex
	w        io.Writer
	total    int
	done     int
	interval int
	reported int
	began    time.Time
	running  bool
}

func NewProgressTracker(w io.Writer, total, reportInterval int) *ProgressTracker {
	return &ProgressTracker{
		w:        w,
		total:    total,
		interval: reportInterval,
	}
}

// Start begins tracking. Calls before Start are ignored.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.began = time.Now()
	p.running = true
	p.done = 0
	p.reported = 0
}

// Update sets the absolute number of processed items.
func (p *ProgressTracker) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(current)
}

// Increment adds delta to the number of processed items.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(p.done + delta)
}

// Finish forces a final report and terminates the progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.done = p.total
	p.report()
	fmt.Fprintln(p.w)
}

// Elapsed returns the time since Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return 0
	}
	return time.Since(p.began)
}

// advance moves progress to target and reports when the interval has been
// crossed. Must be called with the lock held.
func (p *ProgressTracker) advance(target int) {
	if !p.running {
		return
	}

	if target > p.total {
		target = p.total
	}
	p.done = target

	if p.done-p.reported >= p.interval {
		p.report()
		p.reported = p.done
	}
}

// report prints the current progress line. Must be called with the lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.began)
	rate := float64(p.done) / elapsed.Seconds()

	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.w, "\rProgress: %d/%d (%.1f%%) - %.1f chunks/s", p.done, p.total, pct, rate)
}
