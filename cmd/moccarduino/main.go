// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command moccarduino runs a simulated Arduino-style program against a
// stimulus file and writes a CSV log of every enabled channel.
//
// Exit codes: 0 success, 1 assertion or configuration failure, 2 uncaught
// internal error.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/db47h/moccarduino"
	"github.com/db47h/moccarduino/config"
	"github.com/db47h/moccarduino/examples/blink"
	"github.com/db47h/moccarduino/examples/segbuttons"
	"github.com/db47h/moccarduino/report"
	"github.com/db47h/moccarduino/shields"
	"github.com/db47h/moccarduino/stimuli"
	"github.com/db47h/moccarduino/wiring"
)

var (
	programName  string
	stimulusPath string
	outputPath   string
	verbose      bool
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(preParseConfigPath(args))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cmd := newRootCmd(cfg)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if moccarduino.IsKind(err, moccarduino.BadInput) {
			return 1
		}
		return 2
	}
	return 0
}

// preParseConfigPath extracts --config's value, if any, without erroring
// on the rest of the command line: the full flag set (including the
// options config.BindFlags adds) isn't known until cfg has been loaded,
// since its defaults come from the file.
func preParseConfigPath(args []string) string {
	fs := pflag.NewFlagSet("preparse", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	var path string
	fs.StringVar(&path, "config", "", "")
	_ = fs.Parse(args)
	return path
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "moccarduino",
		Short:         "Deterministic simulator for Arduino-style microcontroller programs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().String("config", "", "path to a YAML configuration file (optional)")
	cmd.Flags().StringVar(&programName, "program", "blink", "program to run: blink, segbuttons")
	cmd.Flags().StringVar(&stimulusPath, "stimulus", "", "path to a stimulus file (optional)")
	cmd.Flags().StringVar(&outputPath, "output", "-", "path to the CSV report, or - for stdout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	config.BindFlags(cmd, cfg)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSimulation(cfg)
	}
	return cmd
}

func runSimulation(cfg *config.Config) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pins, err := resolveWiring()
	if err != nil {
		return err
	}

	moccarduino.ReleaseEmulator()
	emu, err := moccarduino.NewEmulator(moccarduino.Delays{}, logger)
	if err != nil {
		return err
	}
	defer moccarduino.ReleaseEmulator()
	emu.SetAPIEnabled("delay", cfg.EnableDelay)
	emu.SetAPIEnabled("delay_microseconds", cfg.EnableDelay)

	program, channels, buttonPins, err := build(emu, cfg, pins)
	if err != nil {
		return err
	}

	sim := moccarduino.NewSimulator(emu, program, logger)
	if err := sim.RunSetup(0); err != nil {
		return err
	}

	if stimulusPath != "" {
		f, err := os.Open(stimulusPath)
		if err != nil {
			return moccarduino.NewBadInputError(err.Error())
		}
		defer f.Close()
		file, err := stimuli.Load(f)
		if err != nil {
			return err
		}
		if err := stimuli.Drive(sim, file, buttonPins); err != nil {
			return err
		}
		if file.EndTime < moccarduino.Time(cfg.SimulationLength) {
			cfg.SimulationLength = uint64(file.EndTime)
		}
	}

	if err := sim.RunLoopsFor(moccarduino.Time(cfg.SimulationLength), moccarduino.Time(cfg.LoopDelay), nil); err != nil {
		return err
	}

	w := os.Stdout
	if outputPath != "-" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return report.Write(w, channels)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// resolveWiring expands the fixed Funshield pin map into a role -> pin id
// table. The simulator currently only ships the Funshield preset; a
// --wiring flag accepting arbitrary wiring.Parse strings for a second
// shield is a natural follow-up.
func resolveWiring() (map[string]int, error) {
	roles, err := wiring.ParseAll(shields.Funshield)
	if err != nil {
		return nil, moccarduino.NewBadInputError(err.Error())
	}
	pins := make(map[string]int, len(roles))
	for role, token := range roles {
		id, err := shields.ResolvePin(token)
		if err != nil {
			return nil, moccarduino.NewBadInputError(err.Error())
		}
		pins[role] = id
	}
	return pins, nil
}

func build(emu *moccarduino.Emulator, cfg *config.Config, pins map[string]int) (moccarduino.Program, []report.Channel, [3]int, error) {
	buttonPins := [3]int{pins["button0"], pins["button1"], pins["button2"]}

	var channels []report.Channel
	if cfg.LogButtons {
		names := [3]string{"b1", "b2", "b3"}
		for i, pin := range buttonPins {
			series, err := registerButtonChannel(emu, pin)
			if err != nil {
				return nil, nil, buttonPins, err
			}
			channels = append(channels, report.BoolChannel(names[i], series))
		}
	}

	switch programName {
	case "blink":
		led0 := pins["led0"]
		p, err := emu.RegisterPin(led0, moccarduino.WiringOutput)
		if err != nil {
			return nil, nil, buttonPins, err
		}
		if cfg.LogLeds {
			b := moccarduino.NewTimeSeries[bool]()
			if err := p.Series().Attach(moccarduino.NewAnalyzer(func(t moccarduino.Time, v moccarduino.PinState) {
				_ = b.OnEvent(t, v.Value == moccarduino.PinHigh)
			}, nil)); err != nil {
				return nil, nil, buttonPins, err
			}
			channels = append(channels, report.BoolChannel("leds", b))
		}
		return blink.New(led0), channels, buttonPins, nil

	case "segbuttons":
		const digits = 4
		dataPin, clockPin, latchPin := pins["data"], pins["clock"], pins["latch"]
		for _, pin := range []int{dataPin, clockPin, latchPin} {
			if _, err := emu.RegisterPin(pin, moccarduino.WiringOutput); err != nil {
				return nil, nil, buttonPins, err
			}
		}
		program := segbuttons.New(buttonPins, dataPin, clockPin, latchPin, digits,
			[3]string{"abcd", "efgh", "ijkl"})
		if cfg.LogSevenSeg {
			ch, err := sevenSegChannel(emu, dataPin, clockPin, latchPin, digits, cfg)
			if err != nil {
				return nil, nil, buttonPins, err
			}
			channels = append(channels, ch)
		}
		return program, channels, buttonPins, nil
	}

	return nil, nil, buttonPins, moccarduino.NewBadInputError("unknown program: " + programName)
}

func registerButtonChannel(emu *moccarduino.Emulator, pin int) (*moccarduino.TimeSeries[bool], error) {
	p, err := emu.RegisterPin(pin, moccarduino.WiringInput)
	if err != nil {
		return nil, err
	}
	b := moccarduino.NewTimeSeries[bool]()
	if err := p.Series().Attach(moccarduino.NewAnalyzer(func(t moccarduino.Time, v moccarduino.PinState) {
		_ = b.OnEvent(t, v.Value == moccarduino.PinLow)
	}, nil)); err != nil {
		return nil, err
	}
	return b, nil
}

func sevenSegChannel(emu *moccarduino.Emulator, dataPin, clockPin, latchPin, digits int, cfg *config.Config) (report.Channel, error) {
	display := moccarduino.NewSerialSegDisplay(dataPin, clockPin, latchPin, digits)
	for _, pin := range []int{dataPin, clockPin, latchPin} {
		p, err := emu.Pin(pin)
		if err != nil {
			return report.Channel{}, err
		}
		if err := p.Series().Attach(display); err != nil {
			return report.Channel{}, err
		}
	}
	out := moccarduino.NewTimeSeries[*moccarduino.BitArray]()
	if cfg.RawSevenSeg {
		if err := display.AttachSprout(out); err != nil {
			return report.Channel{}, err
		}
	} else {
		window := moccarduino.Time(cfg.SevenSegDemuxerWindow)
		demux := moccarduino.NewDemultiplexer(digits*8, window, window/2)
		aggregator := moccarduino.NewAggregator(digits*8, moccarduino.Time(cfg.SevenSegAggregatorWindow))
		if err := display.AttachSprout(demux); err != nil {
			return report.Channel{}, err
		}
		if err := demux.Attach(aggregator); err != nil {
			return report.Channel{}, err
		}
		if err := aggregator.Attach(out); err != nil {
			return report.Channel{}, err
		}
	}
	return report.SevenSegChannel("7seg", out, digits)
}
