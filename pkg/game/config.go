package game

import (
	"math"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/kengen-engine/kengen/pkg/telemetry"
	"github.com/rotisserie/eris"
)

// gameConfig holds the loop configuration read from the environment.
type gameConfig struct {
	// Ticks per second.
	TickRate float64 `env:"KENGEN_TICK_RATE" envDefault:"60"`

	// Stop after this many ticks. Zero runs until the context is canceled.
	MaxTicks uint64 `env:"KENGEN_MAX_TICKS" envDefault:"0"`

	// Number of recent frames averaged for frame time reporting.
	FrameWindow int `env:"KENGEN_FRAME_WINDOW" envDefault:"60"`
}

// loadGameConfig loads the game configuration from environment variables.
func loadGameConfig() (gameConfig, error) {
	cfg := gameConfig{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse game config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate config")
	}

	return cfg, nil
}

// validate performs validation on the loaded configuration.
func (cfg *gameConfig) validate() error {
	if err := validateTickRate(cfg.TickRate); err != nil {
		return err
	}
	if cfg.FrameWindow <= 0 {
		return eris.New("frame window must be positive")
	}
	return nil
}

// applyToOptions applies the configuration values to the given Options.
func (cfg *gameConfig) applyToOptions(opt *Options) {
	opt.TickRate = cfg.TickRate
	opt.MaxTicks = cfg.MaxTicks
	opt.FrameWindow = cfg.FrameWindow
}

// Options configures a Game. Non-zero fields override the environment.
type Options struct {
	TickRate    float64              // Number of ticks per second
	MaxTicks    uint64               // Ticks to run before Run returns, 0 for no limit
	FrameWindow int                  // Frames averaged for frame time reporting
	Telemetry   *telemetry.Telemetry // Optional, logs and spans are dropped when nil
}

// newDefaultOptions creates Options with default values.
func newDefaultOptions() Options {
	// Set these to invalid values to force users to pass in the correct options.
	return Options{
		TickRate:    0,
		MaxTicks:    0,
		FrameWindow: 0,
		Telemetry:   nil,
	}
}

// apply merges the given options into the current options, overriding non-zero values.
func (opt *Options) apply(newOpt Options) {
	if newOpt.TickRate != 0.0 {
		opt.TickRate = newOpt.TickRate
	}
	if newOpt.MaxTicks != 0 {
		opt.MaxTicks = newOpt.MaxTicks
	}
	if newOpt.FrameWindow != 0 {
		opt.FrameWindow = newOpt.FrameWindow
	}
	if newOpt.Telemetry != nil {
		opt.Telemetry = newOpt.Telemetry
	}
}

// validate checks that all required options are set and valid.
func (opt *Options) validate() error {
	if err := validateTickRate(opt.TickRate); err != nil {
		return err
	}
	if opt.FrameWindow <= 0 {
		return eris.New("frame window must be positive")
	}
	return nil
}

// period returns the time between ticks. The tick rate must have been validated.
func (opt *Options) period() time.Duration {
	return time.Duration(float64(time.Second) / opt.TickRate)
}

// validateTickRate rejects rates whose tick period can't be represented as a positive
// time.Duration, which a ticker needs.
func validateTickRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return eris.Errorf("tick rate must be positive and finite, got %v", rate)
	}
	ns := float64(time.Second) / rate
	if ns < 1 {
		return eris.Errorf("tick rate %v is too high, ticks must be at least 1ns apart", rate)
	}
	if ns >= math.MaxInt64 {
		return eris.Errorf("tick rate %v is too low", rate)
	}
	return nil
}
