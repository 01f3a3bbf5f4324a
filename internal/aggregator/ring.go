// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package aggregator

import "github.com/tomtom215/aerographus/internal/models"

// decisionRing and readingRing are bounded FIFO buffers backing the API's
// recent-activity endpoints. They replace the reference behavior of retaining
// every reading for the life of the process with an explicit retention bound.

type decisionRing struct {
	items []models.AlertDecision
	size  int
	index int
	count int
}

func newDecisionRing(size int) *decisionRing {
	return &decisionRing{items: make([]models.AlertDecision, size), size: size}
}

func (r *decisionRing) push(d models.AlertDecision) {
	r.items[r.index] = d
	r.index = (r.index + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

func (r *decisionRing) slice() []models.AlertDecision {
	out := make([]models.AlertDecision, 0, r.count)
	start := r.index - r.count
	if start < 0 {
		start += r.size
	}
	for i := 0; i < r.count; i++ {
		out = append(out, r.items[(start+i)%r.size])
	}
	return out
}

type readingRing struct {
	items []models.Reading
	size  int
	index int
	count int
}

func newReadingRing(size int) *readingRing {
	return &readingRing{items: make([]models.Reading, size), size: size}
}

func (r *readingRing) push(reading models.Reading) {
	r.items[r.index] = reading
	r.index = (r.index + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

func (r *readingRing) slice() []models.Reading {
	out := make([]models.Reading, 0, r.count)
	start := r.index - r.count
	if start < 0 {
		start += r.size
	}
	for i := 0; i < r.count; i++ {
		out = append(out, r.items[(start+i)%r.size])
	}
	return out
}
