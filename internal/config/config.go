package config

// Default values and limits for the envelope synthesis tool. The YAML
// loader starts from these; CLI flags and ENV_* variables override them.
const (
	DefaultLogLevel = "info"

	// Synthesis defaults
	DefaultMode        = "detrough" // "detrough" or "lut"
	DefaultFunction    = "exponential"
	DefaultMinVoltage  = 0.3 // V
	DefaultMaxVoltage  = 1.0 // V
	DefaultExponent    = 2.0
	DefaultDUTPowerDBm = 0.0

	// Tracker defaults
	DefaultInputImpedance = 50.0 // ohm
	DefaultVoltageGain    = 2.5  // V/V
	DefaultCommonMode     = 0.0  // V
	DefaultOutputOffset   = 0.0  // V

	// File I/O defaults
	DefaultBitDepth = 24

	// Transport defaults
	DefaultUDPTarget   = "127.0.0.1:9090"
	DefaultWSListen    = "127.0.0.1:8080"
	DefaultChunkFrames = 1024

	// Hard limits
	MinBitDepth = 16
	MaxBitDepth = 32
)
