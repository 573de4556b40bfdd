// SPDX-License-Identifier: MIT
package synth

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"envtrack/internal/wave"
)

// TrackerConfig describes the physical tracker amplifier's transfer
// characteristic as seen from its electrical input.
type TrackerConfig struct {
	InputImpedance   float64 // Ohm, > 0.
	CommonModeOffset float64 // V.
	VoltageGain      float64 // V/V, nonzero.
	OutputOffset     float64 // V.
}

// NewTrackerConfig returns the default tracker characteristic: 50 ohm
// input, no common-mode offset, 2.5 V/V gain, no output offset.
func NewTrackerConfig() TrackerConfig {
	return TrackerConfig{
		InputImpedance:   50,
		CommonModeOffset: 0,
		VoltageGain:      2.5,
		OutputOffset:     0,
	}
}

// Validate rejects a transfer characteristic the scaler cannot invert.
func (c TrackerConfig) Validate() error {
	if c.VoltageGain == 0 {
		return fmt.Errorf("%w: tracker voltage gain must be nonzero", ErrConfig)
	}
	if c.InputImpedance <= 0 {
		return fmt.Errorf("%w: tracker input impedance must be > 0, got %v", ErrConfig, c.InputImpedance)
	}
	return nil
}

// TrackerScaling is the result of ScaleForTracker: the corrected
// (physically meaningful, un-normalized) tracker-input waveform, the
// unit-range buffer handed to the generation collaborator, and the
// settings to program into the downstream output stage.
type TrackerScaling struct {
	Corrected  *wave.Waveform // Pre-distorted tracker-input signal, volts.
	Normalized []float64      // Corrected signal scaled into [-1, 1].

	OutputLevelVpp float64 // Peak-to-peak level for the output stage.
	OutputOffsetV  float64 // Analog DC offset for the output stage; always 0.
	AbsolutePeak   float64 // Peak magnitude of the corrected signal from zero.
}

// ScaleForTracker pre-distorts a raw envelope for the tracker's gain and
// offset so the physical tracker output matches the intended supply
// profile, and computes the peak statistics needed to program the output
// stage without clipping or under-driving it.
//
// Any residual DC offset is absorbed into the digital signal: the output
// level is 2x the absolute peak (measured from zero) and the analog DC
// offset is programmed to 0.
func ScaleForTracker(env *wave.Waveform, cfg TrackerConfig) (*TrackerScaling, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	corrected := make([]float64, len(env.Samples))
	for i, s := range env.Samples {
		if imag(s) != 0 {
			return nil, fmt.Errorf("%w: envelope waveform %q has a non-real sample at index %d",
				ErrConfig, env.Name, i)
		}
		corrected[i] = (real(s) - cfg.OutputOffset) / cfg.VoltageGain
	}

	max := floats.Max(corrected)
	min := floats.Min(corrected)
	halfSpan := (max - min) / 2
	offset := min + halfSpan
	absolutePeak := math.Abs(offset) + halfSpan

	if absolutePeak == 0 {
		return nil, fmt.Errorf("%w: constant-zero corrected envelope cannot be normalized", ErrDomain)
	}

	normalized := make([]float64, len(corrected))
	copy(normalized, corrected)
	floats.Scale(1/absolutePeak, normalized)

	out := env.Clone()
	for i, v := range corrected {
		out.Samples[i] = complex(v, 0)
	}

	return &TrackerScaling{
		Corrected:      out,
		Normalized:     normalized,
		OutputLevelVpp: 2 * absolutePeak,
		OutputOffsetV:  0,
		AbsolutePeak:   absolutePeak,
	}, nil
}
