// SPDX-License-Identifier: MIT
package transport

import (
	"testing"

	"envtrack/pkg/utils"
)

func TestEnvelopeCursorWraps(t *testing.T) {
	env := []float64{1, 2, 3, 4, 5}
	cur, err := NewEnvelopeCursor("rampEnvelope", 48000, env, 5, 2)
	if err != nil {
		t.Fatalf("NewEnvelopeCursor() error: %v", err)
	}

	mt := &utils.MockTransport{}

	// Chunks of 2 over 5 samples: offsets 0, 2, 4 (short frame), then back to 0.
	wantOffsets := []int{0, 2, 4, 0}
	wantLens := []int{2, 2, 1, 2}

	for range wantOffsets {
		if err := mt.Send(cur.Next()); err != nil {
			t.Fatalf("Send() error: %v", err)
		}
	}

	if len(mt.Frames) != len(wantOffsets) {
		t.Fatalf("recorded %d frames, want %d", len(mt.Frames), len(wantOffsets))
	}
	for i, raw := range mt.Frames {
		frame, ok := raw.(EnvelopeFrame)
		if !ok {
			t.Fatalf("frame %d has type %T, want EnvelopeFrame", i, raw)
		}
		if frame.Offset != wantOffsets[i] {
			t.Errorf("frame %d: offset = %d, want %d", i, frame.Offset, wantOffsets[i])
		}
		if len(frame.Samples) != wantLens[i] {
			t.Errorf("frame %d: len = %d, want %d", i, len(frame.Samples), wantLens[i])
		}
		if frame.Name != "rampEnvelope" || frame.PeakV != 5 {
			t.Errorf("frame %d: metadata = %q/%v, want rampEnvelope/5", i, frame.Name, frame.PeakV)
		}
	}
}

func TestEnvelopeCursorFrameContents(t *testing.T) {
	env := []float64{0.1, 0.2, 0.3}
	cur, err := NewEnvelopeCursor("e", 1000, env, 0.3, 3)
	if err != nil {
		t.Fatalf("NewEnvelopeCursor() error: %v", err)
	}

	frame := cur.Next()
	for i, want := range env {
		if frame.Samples[i] != want {
			t.Errorf("sample %d = %v, want %v", i, frame.Samples[i], want)
		}
	}

	// Whole-buffer chunks wrap straight back to offset 0.
	if next := cur.Next(); next.Offset != 0 {
		t.Errorf("second frame offset = %d, want 0", next.Offset)
	}
}

func TestNewEnvelopeCursorRejections(t *testing.T) {
	if _, err := NewEnvelopeCursor("e", 1000, nil, 0, 4); err == nil {
		t.Error("expected error for empty envelope")
	}
	if _, err := NewEnvelopeCursor("e", 1000, []float64{1}, 1, 0); err == nil {
		t.Error("expected error for non-positive chunk size")
	}
}

func TestLoggingTransportAcceptsFrames(t *testing.T) {
	lt := NewLoggingTransport()
	defer lt.Close()

	if err := lt.Send(EnvelopeFrame{Name: "e", Samples: []float64{1}}); err != nil {
		t.Errorf("Send(EnvelopeFrame) error: %v", err)
	}
	if err := lt.Send(42); err != nil {
		t.Errorf("Send(other) error: %v", err)
	}
}
