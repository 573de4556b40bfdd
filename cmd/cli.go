package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"envtrack/internal/config"
	"envtrack/pkg/build"
)

// ParseArgs builds the CLI, executes it against os.Args, and returns the
// final configuration: YAML file (or defaults) first, then any flags the
// user set on the command line. A nil config with nil error means a
// one-off command (help, version) already ran.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	var (
		configPath string
		cfg        *config.Config
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Envelope-tracking waveform synthesis tool",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Loading the YAML config and overlaying changed flags happens once,
	// before any subcommand runs.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("input") {
			loaded.IO.Input, _ = flags.GetString("input")
		}
		if flags.Changed("output") {
			loaded.IO.Output, _ = flags.GetString("output")
		}
		if flags.Changed("bit-depth") {
			loaded.IO.BitDepth, _ = flags.GetInt("bit-depth")
		}
		if flags.Changed("mode") {
			loaded.Synthesis.Mode, _ = flags.GetString("mode")
		}
		if flags.Changed("track") {
			loaded.Synthesis.Track, _ = flags.GetBool("track")
		}
		if flags.Changed("function") {
			loaded.Detrough.Function, _ = flags.GetString("function")
		}
		if flags.Changed("min-voltage") {
			loaded.Detrough.MinVoltage, _ = flags.GetFloat64("min-voltage")
		}
		if flags.Changed("max-voltage") {
			loaded.Detrough.MaxVoltage, _ = flags.GetFloat64("max-voltage")
		}
		if flags.Changed("exponent") {
			loaded.Detrough.Exponent, _ = flags.GetFloat64("exponent")
		}
		if flags.Changed("dut-power") {
			loaded.LUT.DUTPowerDBm, _ = flags.GetFloat64("dut-power")
		}
		if flags.Changed("verbose") {
			if v, _ := flags.GetBool("verbose"); v {
				loaded.Debug = true
			}
		}

		// Flag overrides can invalidate a config that loaded cleanly.
		if err := loaded.Validate(); err != nil {
			return err
		}

		cfg = loaded
		return nil
	}

	// Synthesis command
	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize an envelope waveform from an IQ source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "synth"
			return nil
		},
	}
	rootCmd.AddCommand(synthCmd)

	// Tracker scaling command
	trackCmd := &cobra.Command{
		Use:   "track",
		Short: "Scale a raw envelope file into tracker input domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "track"
			return nil
		},
	}
	rootCmd.AddCommand(trackCmd)

	// Probe command
	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Print power statistics for a waveform file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "probe"
			return nil
		},
	}
	rootCmd.AddCommand(probeCmd)

	// Configuration file
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to YAML configuration file (default: envtrack.yaml if present)")

	// File I/O
	rootCmd.PersistentFlags().StringP("input", "i", "",
		"Source waveform WAV file (stereo = IQ, mono = real)")
	rootCmd.PersistentFlags().StringP("output", "o", "",
		"Destination WAV file for the synthesized buffer")
	rootCmd.PersistentFlags().Int("bit-depth", config.DefaultBitDepth,
		"Output PCM bit depth (16, 24 or 32)")

	// Synthesis Configuration
	rootCmd.PersistentFlags().StringP("mode", "m", config.DefaultMode,
		"Envelope derivation path: detrough (analytic) or lut (measured table)")
	rootCmd.PersistentFlags().Bool("track", false,
		"Run the tracker output scaler on the synthesized envelope")
	rootCmd.PersistentFlags().String("function", config.DefaultFunction,
		"Detrough companding curve: exponential, cosine or power")
	rootCmd.PersistentFlags().Float64("min-voltage", config.DefaultMinVoltage,
		"Envelope floor voltage for detrough companding")
	rootCmd.PersistentFlags().Float64("max-voltage", config.DefaultMaxVoltage,
		"Envelope ceiling voltage for detrough companding")
	rootCmd.PersistentFlags().Float64("exponent", config.DefaultExponent,
		"Exponent for the power detrough variant")
	rootCmd.PersistentFlags().Float64("dut-power", config.DefaultDUTPowerDBm,
		"Target average DUT input power in dBm (lut mode)")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Show verbose output")

	// Execute the CLI
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return cfg, nil
}
