// SPDX-License-Identifier: MIT
package synth

import (
	"errors"
	"math"
	"testing"

	"envtrack/internal/wave"
)

func envelopeWave(samples []float64) *wave.Waveform {
	buf := make([]complex128, len(samples))
	for i, v := range samples {
		buf[i] = complex(v, 0)
	}
	return &wave.Waveform{
		Name:       "env",
		Samples:    buf,
		SampleRate: 1e6,
	}
}

func TestScaleForTrackerUnityGain(t *testing.T) {
	// Raw envelope oscillating between 1.0 V and 3.0 V through a unity
	// tracker: half span 1, residual DC offset 2, absolute peak 3.
	env := envelopeWave([]float64{1, 3, 1, 3, 2, 1, 3})
	cfg := TrackerConfig{InputImpedance: 50, VoltageGain: 1, OutputOffset: 0}

	res, err := ScaleForTracker(env, cfg)
	if err != nil {
		t.Fatalf("ScaleForTracker() error: %v", err)
	}

	if math.Abs(res.AbsolutePeak-3) > tolerance {
		t.Errorf("AbsolutePeak = %v, want 3", res.AbsolutePeak)
	}
	if math.Abs(res.OutputLevelVpp-6) > tolerance {
		t.Errorf("OutputLevelVpp = %v, want 6", res.OutputLevelVpp)
	}
	if res.OutputOffsetV != 0 {
		t.Errorf("OutputOffsetV = %v, want 0", res.OutputOffsetV)
	}

	// Corrected output carries the physical signal unchanged (unity gain,
	// zero offset); the normalized buffer is the same signal in [-1, 1].
	for i, s := range res.Corrected.Samples {
		if real(s) != real(env.Samples[i]) {
			t.Fatalf("corrected sample %d = %v, want %v", i, real(s), real(env.Samples[i]))
		}
		want := real(env.Samples[i]) / 3
		if math.Abs(res.Normalized[i]-want) > tolerance {
			t.Fatalf("normalized sample %d = %v, want %v", i, res.Normalized[i], want)
		}
		if res.Normalized[i] < -1-tolerance || res.Normalized[i] > 1+tolerance {
			t.Fatalf("normalized sample %d = %v outside [-1, 1]", i, res.Normalized[i])
		}
	}
}

func TestScaleForTrackerGainOffsetCorrection(t *testing.T) {
	// corrected = (raw - outputOffset) / gain must invert the tracker's
	// transfer so the physical output reproduces the intended profile.
	env := envelopeWave([]float64{1.5, 2.0, 3.5})
	cfg := TrackerConfig{InputImpedance: 50, VoltageGain: 2.5, OutputOffset: 0.5}

	res, err := ScaleForTracker(env, cfg)
	if err != nil {
		t.Fatalf("ScaleForTracker() error: %v", err)
	}

	want := []float64{0.4, 0.6, 1.2}
	for i, w := range want {
		if math.Abs(real(res.Corrected.Samples[i])-w) > tolerance {
			t.Errorf("corrected sample %d = %v, want %v", i, real(res.Corrected.Samples[i]), w)
		}
	}
}

func TestScaleForTrackerSymmetricSignal(t *testing.T) {
	// A zero-mean corrected signal has no residual offset: the absolute
	// peak is the half span and the normalized buffer is symmetric.
	env := envelopeWave([]float64{-2, 2, -2, 2})
	cfg := TrackerConfig{InputImpedance: 50, VoltageGain: 1, OutputOffset: 0}

	res, err := ScaleForTracker(env, cfg)
	if err != nil {
		t.Fatalf("ScaleForTracker() error: %v", err)
	}

	if math.Abs(res.AbsolutePeak-2) > tolerance {
		t.Errorf("AbsolutePeak = %v, want 2", res.AbsolutePeak)
	}
	if math.Abs(res.OutputLevelVpp-4) > tolerance {
		t.Errorf("OutputLevelVpp = %v, want 4", res.OutputLevelVpp)
	}

	max, min := math.Inf(-1), math.Inf(1)
	for _, v := range res.Normalized {
		max = math.Max(max, v)
		min = math.Min(min, v)
	}
	if math.Abs(max-1) > tolerance || math.Abs(min+1) > tolerance {
		t.Errorf("normalized extremes = [%v, %v], want [-1, 1]", min, max)
	}
}

func TestScaleForTrackerRejectsZeroEnvelope(t *testing.T) {
	env := envelopeWave([]float64{0, 0, 0, 0})
	cfg := TrackerConfig{InputImpedance: 50, VoltageGain: 1}

	_, err := ScaleForTracker(env, cfg)
	if !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain for constant-zero envelope, got %v", err)
	}
}

func TestScaleForTrackerConfigValidation(t *testing.T) {
	env := envelopeWave([]float64{1, 2})

	tests := []struct {
		name string
		cfg  TrackerConfig
	}{
		{"Zero gain", TrackerConfig{InputImpedance: 50, VoltageGain: 0}},
		{"Zero impedance", TrackerConfig{InputImpedance: 0, VoltageGain: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScaleForTracker(env, tt.cfg)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestScaleForTrackerRejectsComplexInput(t *testing.T) {
	env := &wave.Waveform{
		Name:       "iq",
		Samples:    []complex128{complex(1, 0.5)},
		SampleRate: 1e6,
	}

	_, err := ScaleForTracker(env, NewTrackerConfig())
	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for non-real envelope, got %v", err)
	}
}

func TestScaleForTrackerDoesNotMutateInput(t *testing.T) {
	env := envelopeWave([]float64{1, 2, 3})
	orig := make([]complex128, len(env.Samples))
	copy(orig, env.Samples)

	res, err := ScaleForTracker(env, TrackerConfig{InputImpedance: 50, VoltageGain: 2, OutputOffset: 1})
	if err != nil {
		t.Fatalf("ScaleForTracker() error: %v", err)
	}

	for i := range orig {
		if env.Samples[i] != orig[i] {
			t.Fatalf("input sample %d was mutated", i)
		}
	}
	if &res.Corrected.Samples[0] == &env.Samples[0] {
		t.Error("corrected waveform aliases the input buffer")
	}
}
