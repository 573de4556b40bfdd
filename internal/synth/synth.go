// SPDX-License-Identifier: MIT

// Package synth is the envelope-waveform synthesis and scaling core.
// It derives a lower-bandwidth supply-modulation envelope from a complex
// baseband waveform, either analytically (detrough companding) or through
// a measured power/voltage characteristic, and rescales raw envelopes into
// the tracker amplifier's input domain.
//
// Every function here is a pure, synchronous transform: inputs are read,
// new buffers are allocated, and a new Waveform is returned. Caller
// buffers are never mutated and nothing is logged; all failures surface
// as errors wrapping ErrConfig or ErrDomain.
package synth

import (
	"errors"
	"math"
	"strings"

	"envtrack/internal/wave"
)

// Error sentinels. ErrConfig marks invalid inputs detected before any
// buffer work begins; ErrDomain marks a numeric condition hit at a
// specific computation step (degenerate interpolation interval, zero
// peak). Discriminate with errors.Is.
var (
	ErrConfig = errors.New("synth: invalid configuration")
	ErrDomain = errors.New("synth: domain error")
)

const (
	// Envelope bandwidth is reported as a fixed fraction of the sample
	// rate; the envelope has no meaningful occupied bandwidth of its own.
	envelopeBandwidthFactor = 0.8

	envelopeNameSuffix = "Envelope"
)

// envelopeHeadroomDB is the fixed 10% generation headroom applied to
// every synthesized envelope.
var envelopeHeadroomDB = 10 * math.Log10(0.9)

// envelopeWaveform wraps a synthesized sample buffer in the metadata
// convention shared by both envelope constructors: bandwidth pinned to
// 0.8x the sample rate, PAPR and burst length undefined (not meaningful
// for an envelope), name suffixed and re-keyed into any playback script.
func envelopeWaveform(src *wave.Waveform, samples []complex128) *wave.Waveform {
	name := src.Name + envelopeNameSuffix

	script := src.Script
	if script != "" && src.Name != "" {
		script = strings.ReplaceAll(script, src.Name, name)
	}

	return &wave.Waveform{
		Name:           name,
		Samples:        samples,
		SampleRate:     src.SampleRate,
		Bandwidth:      envelopeBandwidthFactor * src.SampleRate,
		PAPR:           wave.Undefined(),
		BurstLength:    wave.Undefined(),
		HasIdle:        src.HasIdle,
		RuntimeScaling: envelopeHeadroomDB,
		Script:         script,
	}
}
