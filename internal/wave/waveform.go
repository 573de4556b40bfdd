// SPDX-License-Identifier: MIT
package wave

import "fmt"

// Scalar is an optional float64. Metadata such as a peak-to-average ratio
// is not meaningful for every waveform kind, so "undefined" is carried as
// a type-level fact instead of a NaN sentinel.
type Scalar struct {
	Value float64
	Valid bool
}

// Defined returns a Scalar carrying v.
func Defined(v float64) Scalar {
	return Scalar{Value: v, Valid: true}
}

// Undefined returns a Scalar with no value.
func Undefined() Scalar {
	return Scalar{}
}

// Waveform is an ordered sequence of complex baseband samples plus the
// scalar metadata needed to generate it. Waveforms are transient value
// objects: constructed by a caller, consumed by one synthesis call, and
// never mutated afterwards. Synthesis operations always return a new
// Waveform with an independently owned sample buffer.
type Waveform struct {
	Name    string       // Identifying name, used to key playback scripts.
	Samples []complex128 // IQ sample buffer (len > 0).

	SampleRate  float64 // Sample rate in Hz (> 0).
	Bandwidth   float64 // Occupied signal bandwidth in Hz.
	PAPR        Scalar  // Peak-to-average power ratio in dB.
	BurstLength Scalar  // Burst duration in seconds.
	HasIdle     bool    // Buffer contains idle (zero-power) regions.

	RuntimeScaling float64 // Scaling in dB applied at generation time.
	Script         string  // Optional textual playback script (burst timing).
}

// Validate checks the structural invariants every synthesis call relies on.
func (w *Waveform) Validate() error {
	if w == nil {
		return fmt.Errorf("waveform is nil")
	}
	if len(w.Samples) == 0 {
		return fmt.Errorf("waveform %q has an empty sample buffer", w.Name)
	}
	if w.SampleRate <= 0 {
		return fmt.Errorf("waveform %q has non-positive sample rate %v", w.Name, w.SampleRate)
	}
	return nil
}

// Duration returns the buffer length in seconds.
func (w *Waveform) Duration() float64 {
	return float64(len(w.Samples)) / w.SampleRate
}

// Clone returns a deep copy of w. The sample buffer never aliases the
// original.
func (w *Waveform) Clone() *Waveform {
	c := *w
	c.Samples = make([]complex128, len(w.Samples))
	copy(c.Samples, w.Samples)
	return &c
}
