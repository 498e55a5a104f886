package telemetry

import (
	"codeberg.org/mutker/platformstats/internal/errors"
)

// MovingAverage is a fixed-capacity circular buffer with an incrementally
// maintained sum. Until the buffer first fills, the average is taken over the
// samples pushed so far, not over the full capacity.
type MovingAverage struct {
	samples []int64
	sum     int64
	pos     int
	length  int
}

// NewMovingAverage returns a buffer holding up to capacity samples.
// A capacity below one is rejected here rather than failing on first push.
func NewMovingAverage(capacity int) (*MovingAverage, error) {
	if capacity < 1 {
		return nil, errors.New().WithData(errors.ErrInvalidState, capacity)
	}

	return &MovingAverage{samples: make([]int64, capacity)}, nil
}

// Push inserts a sample, evicting the oldest once the window is full, and
// returns the truncating integer average of the live window.
func (m *MovingAverage) Push(value int64) int64 {
	m.sum += value - m.samples[m.pos]
	m.samples[m.pos] = value

	m.pos++
	if m.pos >= len(m.samples) {
		m.pos = 0
	}

	if m.length < len(m.samples) {
		m.length++
	}

	return m.sum / int64(m.length)
}

// Average returns the current window average without inserting a sample.
func (m *MovingAverage) Average() int64 {
	if m.length == 0 {
		return 0
	}

	return m.sum / int64(m.length)
}

// Len returns the number of live samples in the window.
func (m *MovingAverage) Len() int {
	return m.length
}
