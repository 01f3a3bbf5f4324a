// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package aggregator

// Window is a fixed-capacity ring buffer over the most recent reading values
// for a single sensor, in arrival order. Once full it stays full: pushing a
// new value evicts the oldest one.
//
// The running sum is maintained incrementally so Mean is O(1). With the small
// window sizes used for PM2.5 smoothing (default 3) drift from repeated
// float additions is not a concern.
type Window struct {
	values []float64
	size   int
	index  int
	count  int
	sum    float64
}

// NewWindow creates a ring buffer holding up to size values.
// size must be validated by the caller; see aggregator.New.
func NewWindow(size int) *Window {
	return &Window{
		values: make([]float64, size),
		size:   size,
	}
}

// Push appends a value in arrival order, evicting the oldest when full.
func (w *Window) Push(value float64) {
	if w.count == w.size {
		w.sum -= w.values[w.index]
	} else {
		w.count++
	}

	w.values[w.index] = value
	w.sum += value
	w.index = (w.index + 1) % w.size
}

// Full reports whether the window has observed at least size values.
func (w *Window) Full() bool {
	return w.count == w.size
}

// Count returns the number of values currently held.
func (w *Window) Count() int {
	return w.count
}

// Mean returns the arithmetic mean of the held values.
// Returns 0 for an empty window; callers gate on Full before evaluating.
func (w *Window) Mean() float64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

// Values returns the held values oldest-first. The slice is a copy.
func (w *Window) Values() []float64 {
	out := make([]float64, 0, w.count)
	start := w.index - w.count
	if start < 0 {
		start += w.size
	}
	for i := 0; i < w.count; i++ {
		out = append(out, w.values[(start+i)%w.size])
	}
	return out
}
