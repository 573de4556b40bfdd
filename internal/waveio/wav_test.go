// SPDX-License-Identifier: MIT
package waveio

import (
	"math"
	"path/filepath"
	"testing"

	"envtrack/internal/wave"
	"envtrack/pkg/utils"
)

func TestMonoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.wav")

	samples := make([]float64, 512)
	for i := range samples {
		samples[i] = 0.9 * math.Sin(2*math.Pi*float64(i)/64)
	}

	if err := WriteSamples(path, samples, 48000, 24); err != nil {
		t.Fatalf("WriteSamples() error: %v", err)
	}

	w, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if w.Name != "env" {
		t.Errorf("name = %q, want %q", w.Name, "env")
	}
	if w.SampleRate != 48000 {
		t.Errorf("sample rate = %v, want 48000", w.SampleRate)
	}
	if len(w.Samples) != len(samples) {
		t.Fatalf("sample count = %d, want %d", len(w.Samples), len(samples))
	}
	if w.PAPR.Valid {
		t.Error("PAPR must come back undefined from a file")
	}

	// 24-bit quantization error is ~1.2e-7 of full scale.
	for i, want := range samples {
		if math.Abs(real(w.Samples[i])-want) > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", i, real(w.Samples[i]), want)
		}
		if imag(w.Samples[i]) != 0 {
			t.Fatalf("mono sample %d has non-zero imaginary part", i)
		}
	}
}

func TestIQRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iq.wav")

	src := &wave.Waveform{
		Name:       "iq",
		Samples:    utils.ConstantToneIQ(256, 48000, 440, 0.5),
		SampleRate: 48000,
	}

	if err := WriteIQ(path, src, 24); err != nil {
		t.Fatalf("WriteIQ() error: %v", err)
	}

	w, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if len(w.Samples) != len(src.Samples) {
		t.Fatalf("sample count = %d, want %d", len(w.Samples), len(src.Samples))
	}
	for i := range src.Samples {
		if math.Abs(real(w.Samples[i])-real(src.Samples[i])) > 1e-5 ||
			math.Abs(imag(w.Samples[i])-imag(src.Samples[i])) > 1e-5 {
			t.Fatalf("sample %d = %v, want %v", i, w.Samples[i], src.Samples[i])
		}
	}
}

func TestWriteSamplesClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")

	if err := WriteSamples(path, []float64{0, 1.5, -2.0, 0.5}, 48000, 16); err != nil {
		t.Fatalf("WriteSamples() error: %v", err)
	}

	w, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if got := real(w.Samples[1]); got > 1.0001 {
		t.Errorf("clipped sample = %v, want <= 1", got)
	}
	if got := real(w.Samples[2]); got < -1.0001 {
		t.Errorf("clipped sample = %v, want >= -1", got)
	}
}

func TestWriteSamplesRejections(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		samples    []float64
		sampleRate int
		bitDepth   int
	}{
		{"Empty buffer", nil, 48000, 16},
		{"Zero sample rate", []float64{0.5}, 0, 16},
		{"Odd bit depth", []float64{0.5}, 48000, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.wav")
			if err := WriteSamples(path, tt.samples, tt.sampleRate, tt.bitDepth); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
