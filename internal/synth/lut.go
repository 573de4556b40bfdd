// SPDX-License-Identifier: MIT
package synth

import (
	"fmt"

	"envtrack/internal/interp"
	"envtrack/internal/wave"
	"envtrack/pkg/units"
)

// LookupTable is a measured characteristic curve: the supply voltage the
// tracker must deliver at each DUT input power. The two sequences pair up
// index-wise and need not be sorted by power.
type LookupTable struct {
	PowerDBm []float64 // DUT input power axis, dBm.
	Voltage  []float64 // Required supply voltage, V.
}

// Validate rejects a malformed table before any buffer work. Interpolation
// needs at least one interval, so two points is the minimum.
func (t LookupTable) Validate() error {
	if len(t.PowerDBm) != len(t.Voltage) {
		return fmt.Errorf("%w: lookup table axes differ in length (%d power, %d voltage)",
			ErrConfig, len(t.PowerDBm), len(t.Voltage))
	}
	if len(t.PowerDBm) < 2 {
		return fmt.Errorf("%w: lookup table needs at least 2 points, got %d",
			ErrConfig, len(t.PowerDBm))
	}
	return nil
}

// LUTEnvelope derives an envelope from a measured characteristic instead
// of an analytic curve. The source waveform is first rescaled so its
// long-run average power over the 1 ohm reference equals dutPowerDBm:
// the scalar undoes the waveform's known peak-to-average ratio and then
// scales to the target average power. The per-sample instantaneous power
// trace is then mapped through the table by linear interpolation.
//
// The source PAPR must be defined; without it the power scaling is
// meaningless and the call is rejected.
func LUTEnvelope(src *wave.Waveform, lut LookupTable, dutPowerDBm float64) (*wave.Waveform, error) {
	if err := lut.Validate(); err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if !src.PAPR.Valid {
		return nil, fmt.Errorf("%w: source waveform %q has no defined peak-to-average ratio",
			ErrConfig, src.Name)
	}

	// dBm -> dBW(1 ohm) subtracts 10; amplitude scaling is the 20*log10 root.
	scale := units.DBToAmplitudeRatio(src.PAPR.Value) * units.DBToAmplitudeRatio(dutPowerDBm-10)

	// Scale and square in one pass: power[i] = Re^2 + Im^2 over 1 ohm.
	power := make([]float64, len(src.Samples))
	for i, s := range src.Samples {
		re := real(s) * scale
		im := imag(s) * scale
		power[i] = re*re + im*im
	}

	// Convert the table's power axis to linear watts so it lives in the
	// same domain as the trace.
	watts := make([]float64, len(lut.PowerDBm))
	for i, dbm := range lut.PowerDBm {
		watts[i] = units.DBmToWatts(dbm)
	}

	env, err := interp.Linear(watts, lut.Voltage, power)
	if err != nil {
		return nil, fmt.Errorf("%w: mapping power trace through characteristic: %v", ErrDomain, err)
	}

	out := make([]complex128, len(env))
	for i, v := range env {
		out[i] = complex(v, 0)
	}

	return envelopeWaveform(src, out), nil
}
