// SPDX-License-Identifier: MIT
package wave

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		wf      *Waveform
		wantErr bool
	}{
		{"Valid", &Waveform{Name: "w", Samples: []complex128{1}, SampleRate: 48000}, false},
		{"Nil", nil, true},
		{"Empty buffer", &Waveform{Name: "w", SampleRate: 48000}, true},
		{"Zero sample rate", &Waveform{Name: "w", Samples: []complex128{1}}, true},
		{"Negative sample rate", &Waveform{Name: "w", Samples: []complex128{1}, SampleRate: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wf.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	src := &Waveform{
		Name:       "tone",
		Samples:    []complex128{1, 2i, 3},
		SampleRate: 1e6,
		PAPR:       Defined(6.5),
	}

	c := src.Clone()
	c.Samples[0] = 99

	if src.Samples[0] == 99 {
		t.Error("Clone() aliased the source sample buffer")
	}
	if !c.PAPR.Valid || c.PAPR.Value != 6.5 {
		t.Errorf("Clone() dropped metadata: %+v", c.PAPR)
	}
}

func TestDuration(t *testing.T) {
	w := &Waveform{Samples: make([]complex128, 48000), SampleRate: 48000}
	if got := w.Duration(); got != 1.0 {
		t.Errorf("Duration() = %v, want 1.0", got)
	}
}

func TestScalarConstructors(t *testing.T) {
	if s := Defined(3.2); !s.Valid || s.Value != 3.2 {
		t.Errorf("Defined(3.2) = %+v", s)
	}
	if s := Undefined(); s.Valid {
		t.Errorf("Undefined() reported valid: %+v", s)
	}
}
