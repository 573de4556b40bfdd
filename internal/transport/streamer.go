// SPDX-License-Identifier: MIT
package transport

import "fmt"

// EnvelopeCursor yields successive chunks of a synthesized envelope as
// EnvelopeFrames, wrapping at the end of the buffer the way generation
// hardware repeats its waveform. It carries the pacing-independent half
// of streaming; the caller decides when to pull the next frame.
type EnvelopeCursor struct {
	name       string
	sampleRate float64
	env        []float64
	peak       float64
	chunk      int
	offset     int
}

// NewEnvelopeCursor creates a cursor over env emitting chunk samples per
// frame.
func NewEnvelopeCursor(name string, sampleRate float64, env []float64, peak float64, chunk int) (*EnvelopeCursor, error) {
	if len(env) == 0 {
		return nil, fmt.Errorf("EnvelopeCursor: envelope buffer cannot be empty")
	}
	if chunk <= 0 {
		return nil, fmt.Errorf("EnvelopeCursor: chunk size must be positive, got %d", chunk)
	}
	return &EnvelopeCursor{
		name:       name,
		sampleRate: sampleRate,
		env:        env,
		peak:       peak,
		chunk:      chunk,
	}, nil
}

// Next returns the next frame, short at the end of the buffer and then
// wrapped back to the start. The frame's Samples slice aliases the
// envelope buffer; receivers must not mutate it.
func (c *EnvelopeCursor) Next() EnvelopeFrame {
	n := c.chunk
	if remaining := len(c.env) - c.offset; remaining < n {
		n = remaining
	}

	frame := EnvelopeFrame{
		Name:       c.name,
		SampleRate: c.sampleRate,
		Offset:     c.offset,
		Samples:    c.env[c.offset : c.offset+n],
		PeakV:      c.peak,
	}

	c.offset = (c.offset + n) % len(c.env)
	return frame
}
