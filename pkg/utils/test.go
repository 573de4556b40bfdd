package utils

import "math"

// MockTransport implements the transport.Transport interface for testing.
// Send records frames for later inspection instead of transmitting.
type MockTransport struct {
	Frames []any
	Closed bool
}

func (m *MockTransport) Send(data any) error {
	m.Frames = append(m.Frames, data)
	return nil
}

func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}

// NormalizedRampIQ returns IQ samples whose magnitudes sweep linearly from
// 0 to exactly 1 with a rotating phase. Useful for exercising companding
// curves over their whole input range.
func NormalizedRampIQ(size int) []complex128 {
	out := make([]complex128, size)
	for i := range out {
		m := float64(i) / float64(size-1)
		ph := 2 * math.Pi * float64(i%16) / 16
		out[i] = complex(m*math.Cos(ph), m*math.Sin(ph))
	}
	return out
}

// ConstantToneIQ returns a constant-magnitude complex exponential. Its
// peak-to-average power ratio is exactly 0 dB.
func ConstantToneIQ(size int, sampleRate, frequency, amplitude float64) []complex128 {
	out := make([]complex128, size)
	for i := range out {
		ph := 2 * math.Pi * frequency * float64(i) / sampleRate
		out[i] = complex(amplitude*math.Cos(ph), amplitude*math.Sin(ph))
	}
	return out
}

// TwoToneIQ returns the sum of two equal-amplitude complex exponentials,
// a standard 3 dB PAPR test signal when the tone spacing divides the
// buffer length evenly.
func TwoToneIQ(size int, sampleRate, f1, f2, amplitude float64) []complex128 {
	out := make([]complex128, size)
	for i := range out {
		t := float64(i) / sampleRate
		p1 := 2 * math.Pi * f1 * t
		p2 := 2 * math.Pi * f2 * t
		out[i] = complex(amplitude*(math.Cos(p1)+math.Cos(p2)), amplitude*(math.Sin(p1)+math.Sin(p2)))
	}
	return out
}
