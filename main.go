package main

import (
	"fmt"
	"math/cmplx"
	"os"
	"os/signal"
	"syscall"
	"time"

	"envtrack/cmd"
	"envtrack/internal/analysis"
	"envtrack/internal/config"
	applog "envtrack/internal/log"
	"envtrack/internal/synth"
	"envtrack/internal/transport"
	"envtrack/internal/transport/udp"
	"envtrack/internal/wave"
	"envtrack/internal/waveio"
	"envtrack/pkg/build"
)

// main is the entry point for the envelope synthesis tool.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Configure log level
//
// 2. Processing Phase:
//   - Load the source waveform
//   - Run the selected pipeline (probe / synth / track)
//   - Write the result buffer
//
// 3. Monitoring Phase (optional):
//   - Stream the synthesized envelope over UDP / websocket
//   - Block until a termination signal arrives
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Development builds carry no ldflags; that is not fatal.
	if err := build.Initialize(); err != nil {
		applog.Debugf("main: %v", err)
	}

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("main: %v", err)
	}

	// One-off commands (help, version) leave no configuration behind.
	if cfg == nil || cfg.Command == "" {
		return
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	// ==================== PROCESSING PHASE ====================

	switch cfg.Command {
	case "probe":
		err = runProbe(cfg)
	case "synth":
		err = runSynth(cfg)
	case "track":
		err = runTrack(cfg)
	default:
		err = fmt.Errorf("unknown command %q", cfg.Command)
	}
	if err != nil {
		applog.Fatalf("%s: %v", cfg.Command, err)
	}
}

// runProbe prints power statistics for the input waveform.
func runProbe(cfg *config.Config) error {
	src, err := waveio.Read(cfg.IO.Input)
	if err != nil {
		return err
	}

	s, err := analysis.Measure(src)
	if err != nil {
		return err
	}

	fmt.Printf("Waveform:      %s\n", src.Name)
	fmt.Printf("Samples:       %d (%.6f s @ %.0f Hz)\n", s.Samples, s.Duration, src.SampleRate)
	fmt.Printf("Average power: %.6f W\n", s.AveragePower)
	fmt.Printf("Peak power:    %.6f W\n", s.PeakPower)
	fmt.Printf("PAPR:          %.3f dB\n", s.PAPRdB)
	return nil
}

// runSynth loads the source IQ waveform, synthesizes an envelope along the
// configured path, optionally runs the tracker output scaler, writes the
// resulting buffer, and streams it to any enabled monitoring transports.
func runSynth(cfg *config.Config) error {
	src, err := waveio.Read(cfg.IO.Input)
	if err != nil {
		return err
	}

	var env *wave.Waveform
	switch cfg.Synthesis.Mode {
	case "detrough":
		fn, err := synth.ParseDetroughFunction(cfg.Detrough.Function)
		if err != nil {
			return err
		}
		dcfg := synth.DetroughConfig{
			Function:   fn,
			MinVoltage: cfg.Detrough.MinVoltage,
			MaxVoltage: cfg.Detrough.MaxVoltage,
			Exponent:   cfg.Detrough.Exponent,
		}
		env, err = synth.DetroughEnvelope(normalizeIQ(src), dcfg)
		if err != nil {
			return err
		}

	case "lut":
		// The table path scales by the source crest factor, so the PAPR
		// metadata must exist; measure it when the file had none.
		measured, err := analysis.WithMeasuredPAPR(src)
		if err != nil {
			return err
		}
		lut := synth.LookupTable{
			PowerDBm: cfg.LUT.PowerDBm,
			Voltage:  cfg.LUT.Voltage,
		}
		env, err = synth.LUTEnvelope(measured, lut, cfg.LUT.DUTPowerDBm)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown synthesis mode %q", cfg.Synthesis.Mode)
	}

	volts := realSamples(env)
	peak := peakAbs(volts)
	fmt.Printf("Synthesized %s: %d samples, peak %.4f V\n", env.Name, len(volts), peak)

	// Output buffer: either the tracker's pre-distorted unit-range signal,
	// or the envelope itself normalized to full scale.
	out := make([]float64, len(volts))
	if cfg.Synthesis.Track {
		tcfg := synth.TrackerConfig{
			InputImpedance:   cfg.Tracker.InputImpedance,
			CommonModeOffset: cfg.Tracker.CommonModeOffset,
			VoltageGain:      cfg.Tracker.VoltageGain,
			OutputOffset:     cfg.Tracker.OutputOffset,
		}
		res, err := synth.ScaleForTracker(env, tcfg)
		if err != nil {
			return err
		}
		copy(out, res.Normalized)
		fmt.Printf("Output level:  %.4f Vpp\n", res.OutputLevelVpp)
		fmt.Printf("Output offset: %.4f V\n", res.OutputOffsetV)
	} else {
		if peak == 0 {
			return fmt.Errorf("synthesized envelope is constant zero, nothing to write")
		}
		for i, v := range volts {
			out[i] = v / peak
		}
	}

	if cfg.IO.Output != "" {
		if err := waveio.WriteSamples(cfg.IO.Output, out, int(env.SampleRate), cfg.IO.BitDepth); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfg.IO.Output)
	}

	// ==================== MONITORING PHASE ====================

	return monitorEnvelope(cfg, env.Name, env.SampleRate, volts, peak)
}

// runTrack reads a raw envelope file (mono, volts) and runs the tracker
// output scaler on it directly.
func runTrack(cfg *config.Config) error {
	env, err := waveio.Read(cfg.IO.Input)
	if err != nil {
		return err
	}

	tcfg := synth.TrackerConfig{
		InputImpedance:   cfg.Tracker.InputImpedance,
		CommonModeOffset: cfg.Tracker.CommonModeOffset,
		VoltageGain:      cfg.Tracker.VoltageGain,
		OutputOffset:     cfg.Tracker.OutputOffset,
	}
	res, err := synth.ScaleForTracker(env, tcfg)
	if err != nil {
		return err
	}

	fmt.Printf("Envelope:      %s (%d samples)\n", env.Name, len(env.Samples))
	fmt.Printf("Absolute peak: %.4f V\n", res.AbsolutePeak)
	fmt.Printf("Output level:  %.4f Vpp\n", res.OutputLevelVpp)
	fmt.Printf("Output offset: %.4f V\n", res.OutputOffsetV)

	if cfg.IO.Output != "" {
		if err := waveio.WriteSamples(cfg.IO.Output, res.Normalized, int(env.SampleRate), cfg.IO.BitDepth); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfg.IO.Output)
	}
	return nil
}

// monitorEnvelope streams the envelope to any enabled transports until a
// termination signal arrives. With no transport enabled it returns at once.
func monitorEnvelope(cfg *config.Config, name string, sampleRate float64, env []float64, peak float64) error {
	tc := cfg.Transport
	if !tc.UDPEnabled && !tc.WSEnabled {
		return nil
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	interval := time.Duration(tc.UDPSendInterval)

	if tc.UDPEnabled {
		sender, err := udp.NewUDPSender(tc.UDPTargetAddress)
		if err != nil {
			return err
		}
		defer sender.Close()

		pub, err := udp.NewEnvelopePublisher(interval, sender, env, tc.ChunkFrames)
		if err != nil {
			return err
		}
		pub.Start()
		defer pub.Close()
	}

	// Frames go to the websocket broadcast when enabled, otherwise to the
	// debug logger so the frame flow stays observable next to the UDP
	// stream.
	var sink transport.Transport
	if tc.WSEnabled {
		sink = transport.NewWebSocketTransport(tc.WSListenAddress)
	} else {
		sink = transport.NewLoggingTransport()
	}
	defer sink.Close()

	cursor, err := transport.NewEnvelopeCursor(name, sampleRate, env, peak, tc.ChunkFrames)
	if err != nil {
		return err
	}

	fmt.Printf("Streaming envelope (%d samples). Press Ctrl+C to stop.\n", len(env))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-ticker.C:
			if err := sink.Send(cursor.Next()); err != nil {
				applog.Warnf("main: Frame send failed: %v", err)
			}
		}
	}
}

// normalizeIQ returns a copy of w with the sample magnitudes scaled so the
// peak magnitude is exactly 1, as the companding curves expect. A waveform
// already at peak 1 (or silent) comes back as an unscaled copy.
func normalizeIQ(w *wave.Waveform) *wave.Waveform {
	out := w.Clone()

	peak := 0.0
	for _, s := range out.Samples {
		if m := cmplx.Abs(s); m > peak {
			peak = m
		}
	}
	if peak == 0 || peak == 1 {
		return out
	}

	scale := complex(1/peak, 0)
	for i, s := range out.Samples {
		out.Samples[i] = s * scale
	}
	return out
}

// realSamples extracts the real parts of a waveform's sample buffer.
func realSamples(w *wave.Waveform) []float64 {
	out := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = real(s)
	}
	return out
}

func peakAbs(v []float64) float64 {
	peak := 0.0
	for _, x := range v {
		if x < 0 {
			x = -x
		}
		if x > peak {
			peak = x
		}
	}
	return peak
}
