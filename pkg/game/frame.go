package game

import (
	"time"

	"github.com/kengen-engine/kengen/pkg/assert"
)

// FrameWindow keeps the durations of the most recent frames. Once full, each push evicts the
// oldest frame.
type FrameWindow struct {
	frames []time.Duration // Ring buffer
	next   int             // Slot the next push writes to
	size   int
	sum    time.Duration
}

// NewFrameWindow creates a window holding up to capacity frames.
func NewFrameWindow(capacity int) *FrameWindow {
	assert.That(capacity > 0, "frame window capacity must be positive")
	return &FrameWindow{frames: make([]time.Duration, capacity)}
}

// Push records a frame duration.
func (w *FrameWindow) Push(d time.Duration) {
	if w.size == len(w.frames) {
		w.sum -= w.frames[w.next]
	} else {
		w.size++
	}
	w.frames[w.next] = d
	w.sum += d
	w.next = (w.next + 1) % len(w.frames)
}

// Average returns the mean of the recorded frames, or false if none were recorded.
func (w *FrameWindow) Average() (time.Duration, bool) {
	if w.size == 0 {
		return 0, false
	}
	return w.sum / time.Duration(w.size), true
}

// Len returns the number of recorded frames.
func (w *FrameWindow) Len() int {
	return w.size
}
