// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the simulator's run configuration (§6) from an
// optional YAML file, then lets CLI flags override it.
package config

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config mirrors the option table of §6 exactly: one field per recognized
// option.
type Config struct {
	LoopDelay        uint64 `yaml:"loop-delay"`
	SimulationLength uint64 `yaml:"simulation-length"`

	LogButtons  bool `yaml:"log-buttons"`
	LogLeds     bool `yaml:"log-leds"`
	LogSevenSeg bool `yaml:"log-7seg"`
	LogSerial   bool `yaml:"log-serial"`

	RawLeds     bool `yaml:"raw-leds"`
	RawSevenSeg bool `yaml:"raw-7seg"`

	LedsDemuxerWindow        uint64 `yaml:"leds-demuxer-window"`
	SevenSegDemuxerWindow    uint64 `yaml:"7seg-demuxer-window"`
	LedsAggregatorWindow     uint64 `yaml:"leds-aggregator-window"`
	SevenSegAggregatorWindow uint64 `yaml:"7seg-aggregator-window"`

	EnableDelay  bool `yaml:"enable-delay"`
	OneLatchLoop bool `yaml:"one-latch-loop"`
}

// Default returns the configuration implied by the defaults named
// throughout §4 and §6.
func Default() *Config {
	return &Config{
		LoopDelay:                100,
		SimulationLength:         100000000,
		LogButtons:               true,
		LogLeds:                  true,
		LogSevenSeg:              true,
		LogSerial:                true,
		LedsDemuxerWindow:        1000,
		SevenSegDemuxerWindow:    1000,
		LedsAggregatorWindow:     10000,
		SevenSegAggregatorWindow: 10000,
		EnableDelay:              true,
		OneLatchLoop:             true,
	}
}

// Load reads path (if non-empty and it exists) as YAML, merging its fields
// onto Default. A missing path is not an error; an existing but malformed
// file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BindFlags registers a cobra flag per option, defaulting to cfg's current
// values; flags take precedence over the YAML file since Execute parses
// flags after Load populates cfg.
func BindFlags(cmd *cobra.Command, cfg *Config) {
	f := cmd.Flags()
	f.Uint64Var(&cfg.LoopDelay, "loop-delay", cfg.LoopDelay, "clock increment per loop call, in microseconds")
	f.Uint64Var(&cfg.SimulationLength, "simulation-length", cfg.SimulationLength, "hard upper bound on simulation time, in microseconds")
	f.BoolVar(&cfg.LogButtons, "log-buttons", cfg.LogButtons, "enable the b1/b2/b3 report columns")
	f.BoolVar(&cfg.LogLeds, "log-leds", cfg.LogLeds, "enable the leds report column")
	f.BoolVar(&cfg.LogSevenSeg, "log-7seg", cfg.LogSevenSeg, "enable the 7seg report column")
	f.BoolVar(&cfg.LogSerial, "log-serial", cfg.LogSerial, "serial report column (the CLI does not produce a serial column)")
	f.BoolVar(&cfg.RawLeds, "raw-leds", cfg.RawLeds, "leds raw mode (the CLI's leds column is always raw; no leds demultiplexer or aggregator is built)")
	f.BoolVar(&cfg.RawSevenSeg, "raw-7seg", cfg.RawSevenSeg, "bypass the 7seg demultiplexer and aggregator")
	f.Uint64Var(&cfg.LedsDemuxerWindow, "leds-demuxer-window", cfg.LedsDemuxerWindow, "leds demultiplexer window, in microseconds (not used by the CLI)")
	f.Uint64Var(&cfg.SevenSegDemuxerWindow, "7seg-demuxer-window", cfg.SevenSegDemuxerWindow, "7seg demultiplexer window, in microseconds")
	f.Uint64Var(&cfg.LedsAggregatorWindow, "leds-aggregator-window", cfg.LedsAggregatorWindow, "leds aggregator window, in microseconds (not used by the CLI)")
	f.Uint64Var(&cfg.SevenSegAggregatorWindow, "7seg-aggregator-window", cfg.SevenSegAggregatorWindow, "7seg aggregator window, in microseconds")
	f.BoolVar(&cfg.EnableDelay, "enable-delay", cfg.EnableDelay, "allow delay/delay_microseconds API calls")
	f.BoolVar(&cfg.OneLatchLoop, "one-latch-loop", cfg.OneLatchLoop, "at most one latch rising edge per loop (the CLI performs no such check)")
}
