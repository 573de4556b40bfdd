// SPDX-License-Identifier: MIT
package synth

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"envtrack/internal/wave"
)

// DetroughFunction selects the analytic companding curve used to keep the
// tracker out of its low-efficiency trough region.
type DetroughFunction int

const (
	DetroughExponential DetroughFunction = iota
	DetroughCosine
	DetroughPower
)

// String returns the lowercase name used in config files and CLI flags.
func (f DetroughFunction) String() string {
	switch f {
	case DetroughExponential:
		return "exponential"
	case DetroughCosine:
		return "cosine"
	case DetroughPower:
		return "power"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ParseDetroughFunction converts a name (case-insensitive) to a
// DetroughFunction.
func ParseDetroughFunction(name string) (DetroughFunction, error) {
	switch strings.ToLower(name) {
	case "exponential", "exp":
		return DetroughExponential, nil
	case "cosine", "cos":
		return DetroughCosine, nil
	case "power":
		return DetroughPower, nil
	default:
		return 0, fmt.Errorf("%w: unknown detrough function %q", ErrConfig, name)
	}
}

// DetroughConfig describes the analytic companding applied by
// DetroughEnvelope. MinVoltage and MaxVoltage bound the emitted envelope;
// Exponent is used by the Power variant only.
type DetroughConfig struct {
	Function   DetroughFunction
	MinVoltage float64 // V, > 0
	MaxVoltage float64 // V, > MinVoltage
	Exponent   float64 // > 0, Power variant only
}

// NewDetroughConfig returns the default companding configuration:
// exponential curve, 0.3 V floor, 1.0 V ceiling, exponent 2.
func NewDetroughConfig() DetroughConfig {
	return DetroughConfig{
		Function:   DetroughExponential,
		MinVoltage: 0.3,
		MaxVoltage: 1.0,
		Exponent:   2,
	}
}

// Validate rejects invalid companding parameters before any buffer work.
func (c DetroughConfig) Validate() error {
	switch c.Function {
	case DetroughExponential, DetroughCosine:
	case DetroughPower:
		if c.Exponent <= 0 {
			return fmt.Errorf("%w: detrough exponent must be > 0, got %v", ErrConfig, c.Exponent)
		}
	default:
		return fmt.Errorf("%w: unrecognized detrough function %v", ErrConfig, int(c.Function))
	}

	if c.MinVoltage <= 0 {
		return fmt.Errorf("%w: detrough min voltage must be > 0, got %v", ErrConfig, c.MinVoltage)
	}
	if c.MaxVoltage <= c.MinVoltage {
		return fmt.Errorf("%w: detrough max voltage %v must exceed min voltage %v",
			ErrConfig, c.MaxVoltage, c.MinVoltage)
	}
	return nil
}

// DetroughEnvelope compands the instantaneous magnitude of src into a
// supply-voltage envelope. Magnitudes are assumed pre-normalized so the
// peak is exactly 1; each curve is re-normalized by its own value at m=1,
// so the emitted maximum equals MaxVoltage regardless of rounding.
//
// With d = MinVoltage/MaxVoltage:
//
//	exponential: s(m) = m + d*exp(-m/d)
//	cosine:      s(m) = 1 - (1-d)*cos(m*k), k = 1 - (1-d)*cos(pi/2)
//	power:       s(m) = (1-d) + m^e*(1-d)
//
// The returned Waveform owns a fresh buffer of the same length as src.
func DetroughEnvelope(src *wave.Waveform, cfg DetroughConfig) (*wave.Waveform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	d := cfg.MinVoltage / cfg.MaxVoltage

	var compand func(m float64) float64
	switch cfg.Function {
	case DetroughExponential:
		compand = func(m float64) float64 {
			return m + d*math.Exp(-m/d)
		}
	case DetroughCosine:
		// The characterized curve derives its scale factor from cos(pi/2),
		// which is zero, so k is identically 1. Reproduced verbatim; see
		// DESIGN.md before changing this.
		k := 1 - (1-d)*math.Cos(math.Pi/2)
		compand = func(m float64) float64 {
			return 1 - (1-d)*math.Cos(m*k)
		}
	case DetroughPower:
		e := cfg.Exponent
		compand = func(m float64) float64 {
			return (1 - d) + math.Pow(m, e)*(1-d)
		}
	}

	scale := cfg.MaxVoltage / compand(1)

	out := make([]complex128, len(src.Samples))
	for i, s := range src.Samples {
		out[i] = complex(scale*compand(cmplx.Abs(s)), 0)
	}

	return envelopeWaveform(src, out), nil
}
