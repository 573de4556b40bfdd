// SPDX-License-Identifier: MIT

// Package analysis computes power statistics over IQ waveforms. It fills
// in metadata the synthesis core needs (peak-to-average ratio) when a
// source waveform arrives without it, and feeds the probe command and
// monitoring transports.
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"envtrack/internal/wave"
	"envtrack/pkg/units"
)

// Summary captures the power statistics of a waveform. Powers are
// instantaneous Re^2+Im^2 values, i.e. watts over the 1 ohm reference.
type Summary struct {
	Samples      int
	Duration     float64 // seconds
	AveragePower float64 // watts
	PeakPower    float64 // watts
	PAPRdB       float64
}

// Measure computes a Summary in one pass over the sample buffer plus the
// reductions. A silent buffer has no defined peak-to-average ratio and is
// rejected.
func Measure(w *wave.Waveform) (Summary, error) {
	if err := w.Validate(); err != nil {
		return Summary{}, err
	}

	power := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		power[i] = real(s)*real(s) + imag(s)*imag(s)
	}

	avg := stat.Mean(power, nil)
	if avg == 0 {
		return Summary{}, fmt.Errorf("waveform %q is silent, power statistics undefined", w.Name)
	}

	peak := floats.Max(power)

	return Summary{
		Samples:      len(power),
		Duration:     w.Duration(),
		AveragePower: avg,
		PeakPower:    peak,
		PAPRdB:       units.PowerRatioToDB(peak / avg),
	}, nil
}

// WithMeasuredPAPR returns w when its PAPR metadata is already defined,
// or a clone with the PAPR measured from the samples. The original is
// never touched.
func WithMeasuredPAPR(w *wave.Waveform) (*wave.Waveform, error) {
	if w.PAPR.Valid {
		return w, nil
	}

	s, err := Measure(w)
	if err != nil {
		return nil, err
	}

	out := w.Clone()
	out.PAPR = wave.Defined(s.PAPRdB)
	return out, nil
}
