// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug mode (verbose logging).
	LogLevel  string          `yaml:"log_level"` // Logging level ("debug", "info", "warn", "error").
	Synthesis SynthesisConfig `yaml:"synthesis"` // Which envelope constructor runs and how.
	Detrough  DetroughConfig  `yaml:"detrough"`  // Analytic companding parameters.
	LUT       LUTConfig       `yaml:"lut"`       // Measured characteristic table.
	Tracker   TrackerConfig   `yaml:"tracker"`   // Tracker amplifier transfer characteristic.
	IO        IOConfig        `yaml:"io"`        // Waveform file input/output.
	Transport TransportConfig `yaml:"transport"` // Envelope monitoring transports.

	// Command is the CLI subcommand selected at parse time, never read
	// from the file.
	Command string `yaml:"-"`
}

// SynthesisConfig selects the envelope derivation path.
type SynthesisConfig struct {
	Mode  string `yaml:"mode"`  // "detrough" (analytic) or "lut" (measured characteristic).
	Track bool   `yaml:"track"` // Run the tracker output scaler on the synthesized envelope.
}

// DetroughConfig holds the analytic companding parameters.
type DetroughConfig struct {
	Function   string  `yaml:"function"`    // "exponential", "cosine" or "power".
	MinVoltage float64 `yaml:"min_voltage"` // Envelope floor in volts (> 0).
	MaxVoltage float64 `yaml:"max_voltage"` // Envelope ceiling in volts (> min).
	Exponent   float64 `yaml:"exponent"`    // Power-variant exponent (> 0).
}

// LUTConfig holds the measured power/voltage characteristic inline. The
// two sequences pair up index-wise and need not be sorted.
type LUTConfig struct {
	PowerDBm    []float64 `yaml:"power_dbm"`     // DUT input power axis, dBm.
	Voltage     []float64 `yaml:"voltage"`       // Required supply voltage, V.
	DUTPowerDBm float64   `yaml:"dut_power_dbm"` // Target average DUT input power.
}

// TrackerConfig describes the tracker amplifier seen by the output scaler.
type TrackerConfig struct {
	InputImpedance   float64 `yaml:"input_impedance"`    // Ohm (> 0).
	CommonModeOffset float64 `yaml:"common_mode_offset"` // V.
	VoltageGain      float64 `yaml:"voltage_gain"`       // V/V (nonzero).
	OutputOffset     float64 `yaml:"output_offset"`      // V.
}

// IOConfig holds waveform file settings for the collaborator shim.
type IOConfig struct {
	Input    string `yaml:"input"`     // Source IQ (or envelope) WAV path.
	Output   string `yaml:"output"`    // Destination WAV path.
	BitDepth int    `yaml:"bit_depth"` // Output PCM bit depth (16, 24 or 32).
}

// TransportConfig holds settings for streaming envelope frames to monitors.
type TransportConfig struct {
	UDPEnabled       bool     `yaml:"udp_enabled"`        // Enable sending envelope frames over UDP.
	UDPTargetAddress string   `yaml:"udp_target_address"` // Target address, e.g. "127.0.0.1:9090".
	UDPSendInterval  Duration `yaml:"udp_send_interval"`  // Interval between frames, e.g. "33ms".
	WSEnabled        bool     `yaml:"ws_enabled"`         // Enable the websocket broadcast server.
	WSListenAddress  string   `yaml:"ws_listen_address"`  // Listen address for /ws upgrades.
	ChunkFrames      int      `yaml:"chunk_frames"`       // Envelope samples per published frame.
}

// Duration wraps time.Duration so YAML accepts "33ms"-style strings as
// well as bare nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(dur)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// LoadConfig loads configuration from a YAML file specified by path. If path is
// empty, it searches default locations ("envtrack.yaml"). If no file is found,
// it uses built-in defaults. After loading defaults or from file, it applies
// environment variable overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		Debug:    false,
		LogLevel: DefaultLogLevel,
		Synthesis: SynthesisConfig{
			Mode: DefaultMode,
		},
		Detrough: DetroughConfig{
			Function:   DefaultFunction,
			MinVoltage: DefaultMinVoltage,
			MaxVoltage: DefaultMaxVoltage,
			Exponent:   DefaultExponent,
		},
		LUT: LUTConfig{
			DUTPowerDBm: DefaultDUTPowerDBm,
		},
		Tracker: TrackerConfig{
			InputImpedance:   DefaultInputImpedance,
			CommonModeOffset: DefaultCommonMode,
			VoltageGain:      DefaultVoltageGain,
			OutputOffset:     DefaultOutputOffset,
		},
		IO: IOConfig{
			BitDepth: DefaultBitDepth,
		},
		Transport: TransportConfig{
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTarget,
			UDPSendInterval:  Duration(33 * time.Millisecond), // ~30 frames/s.
			WSEnabled:        false,
			WSListenAddress:  DefaultWSListen,
			ChunkFrames:      DefaultChunkFrames,
		},
	}

	if path == "" {
		candidates := []string{
			"envtrack.yaml",
			"config.yaml",
		}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field consistency. The synthesis core re-validates
// its own inputs; this catches config-file mistakes before any file is read.
func (c *Config) Validate() error {
	switch c.Synthesis.Mode {
	case "detrough", "lut":
	default:
		return fmt.Errorf("synthesis.mode must be \"detrough\" or \"lut\", got %q", c.Synthesis.Mode)
	}

	if c.Detrough.MinVoltage <= 0 {
		return fmt.Errorf("detrough.min_voltage must be positive, got %v", c.Detrough.MinVoltage)
	}
	if c.Detrough.MaxVoltage <= c.Detrough.MinVoltage {
		return fmt.Errorf("detrough.max_voltage (%v) must exceed detrough.min_voltage (%v)",
			c.Detrough.MaxVoltage, c.Detrough.MinVoltage)
	}

	if len(c.LUT.PowerDBm) != len(c.LUT.Voltage) {
		return fmt.Errorf("lut.power_dbm and lut.voltage differ in length (%d vs %d)",
			len(c.LUT.PowerDBm), len(c.LUT.Voltage))
	}

	if c.Tracker.VoltageGain == 0 {
		return fmt.Errorf("tracker.voltage_gain must be nonzero")
	}

	if c.IO.BitDepth < MinBitDepth || c.IO.BitDepth > MaxBitDepth {
		return fmt.Errorf("io.bit_depth must be between %d and %d, got %d",
			MinBitDepth, MaxBitDepth, c.IO.BitDepth)
	}

	if c.Transport.UDPEnabled {
		if c.Transport.UDPTargetAddress == "" {
			return fmt.Errorf("transport.udp_target_address must be set when UDP is enabled")
		}
		if c.Transport.UDPSendInterval <= 0 {
			return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}
	if c.Transport.ChunkFrames <= 0 {
		return fmt.Errorf("transport.chunk_frames must be positive, got %d", c.Transport.ChunkFrames)
	}

	return nil
}

func (cfg *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.

	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = Duration(dur)
		}
	}
}
