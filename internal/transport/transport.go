// SPDX-License-Identifier: MIT

// Package transport streams synthesized envelope data to monitoring
// clients. It is a collaborator concern: the synthesis core never imports
// it and runs fine with no transport configured.
package transport

// Transport defines a generic interface for sending processed data or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// EnvelopeFrame is one published chunk of a synthesized envelope, sized
// for a monitoring UI rather than for generation hardware.
type EnvelopeFrame struct {
	Name       string    `json:"name"`        // Envelope waveform name.
	SampleRate float64   `json:"sample_rate"` // Hz.
	Offset     int       `json:"offset"`      // Index of Samples[0] within the full envelope.
	Samples    []float64 `json:"samples"`     // Envelope voltages for this chunk.
	PeakV      float64   `json:"peak_v"`      // Peak voltage over the full envelope.
}
