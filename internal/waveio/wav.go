// SPDX-License-Identifier: MIT

// Package waveio loads and stores waveforms as WAV files. It is the
// file-format collaborator around the synthesis core: stereo files carry
// IQ pairs (left = I, right = Q), mono files carry real-valued signals
// such as envelopes. The core itself never touches a file.
package waveio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "envtrack/internal/log"
	"envtrack/internal/wave"
)

// Read decodes a WAV file into a Waveform. Two-channel files are read as
// IQ pairs, one-channel files as real samples with zero imaginary part.
// PAPR and burst length come back undefined; callers measure them when
// needed.
func Read(path string) (*wave.Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open waveform file: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%s contains no samples", path)
	}

	channels := buf.Format.NumChannels
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%s has %d channels, want 1 (real) or 2 (IQ)", path, channels)
	}

	// Fixed-point PCM to [-1, 1) floats.
	scale := 1.0 / float64(int(1)<<(d.BitDepth-1))

	frames := len(buf.Data) / channels
	samples := make([]complex128, frames)
	if channels == 1 {
		for i := 0; i < frames; i++ {
			samples[i] = complex(float64(buf.Data[i])*scale, 0)
		}
	} else {
		for i := 0; i < frames; i++ {
			re := float64(buf.Data[2*i]) * scale
			im := float64(buf.Data[2*i+1]) * scale
			samples[i] = complex(re, im)
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	applog.Debugf("waveio: Read %d samples (%d ch, %d bit, %d Hz) from %s",
		frames, channels, d.BitDepth, buf.Format.SampleRate, path)

	return &wave.Waveform{
		Name:        name,
		Samples:     samples,
		SampleRate:  float64(buf.Format.SampleRate),
		PAPR:        wave.Undefined(),
		BurstLength: wave.Undefined(),
	}, nil
}

// WriteSamples encodes a real-valued buffer as a mono PCM WAV file.
// Samples are expected in [-1, 1]; out-of-range values are clipped and
// reported, since a clipped generator buffer is usually a scaling bug
// upstream.
func WriteSamples(path string, samples []float64, sampleRate, bitDepth int) error {
	if len(samples) == 0 {
		return fmt.Errorf("refusing to write empty sample buffer to %s", path)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d, want 16, 24 or 32", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)

	fullScale := float64(int(1)<<(bitDepth-1) - 1)
	clipped := 0
	data := make([]int, len(samples))
	for i, v := range samples {
		if v > 1 {
			v = 1
			clipped++
		} else if v < -1 {
			v = -1
			clipped++
		}
		data[i] = int(v * fullScale)
	}
	if clipped > 0 {
		applog.Warnf("waveio: Clipped %d of %d samples writing %s", clipped, len(samples), path)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}

	applog.Debugf("waveio: Wrote %d samples (%d bit, %d Hz) to %s",
		len(samples), bitDepth, sampleRate, path)
	return nil
}

// WriteIQ encodes a complex waveform as a two-channel PCM WAV file with
// I on the left channel and Q on the right.
func WriteIQ(path string, w *wave.Waveform, bitDepth int) error {
	if err := w.Validate(); err != nil {
		return err
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth %d, want 16, 24 or 32", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, int(w.SampleRate), bitDepth, 2, 1)

	fullScale := float64(int(1)<<(bitDepth-1) - 1)
	data := make([]int, 2*len(w.Samples))
	for i, s := range w.Samples {
		data[2*i] = int(clamp(real(s)) * fullScale)
		data[2*i+1] = int(clamp(imag(s)) * fullScale)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  int(w.SampleRate),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
