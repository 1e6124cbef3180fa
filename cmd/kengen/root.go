package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kengen-engine/kengen/pkg/game"
	"github.com/kengen-engine/kengen/pkg/telemetry"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long telemetry gets to flush on exit.
const shutdownTimeout = 5 * time.Second

type rootFlags struct {
	logLevel  string
	logOutput string
	logFormat string
	ticks     uint64
	tickRate  float64
	entities  int
	keys      bool
}

// NewRootCmd creates the kengen command.
func NewRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "kengen",
		Short: "Run the kengen demo world",
		Long: `Run a headless demo world at a fixed tick rate.

With --keys, each line read from stdin is a key press:
  p        pause or unpause
  ; or s   stop, or resume a stopped game
  d        toggle debug mode (dumps every entity each tick)
  esc      stop, or exit a stopped game
  q        same as esc`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.logLevel, "loglevel", "l", "",
		"log level: debug, info, warning, error or critical (overrides KENGEN_LOG_LEVEL)")
	f.StringVarP(&flags.logOutput, "logoutput", "o", "", "file to append logs to instead of stdout")
	f.StringVar(&flags.logFormat, "logformat", "", "log format: json or pretty (overrides KENGEN_LOG_FORMAT)")
	f.Uint64Var(&flags.ticks, "ticks", 0, "stop after this many ticks, 0 runs until interrupted")
	f.Float64Var(&flags.tickRate, "tickrate", 0, "ticks per second (overrides KENGEN_TICK_RATE)")
	f.IntVar(&flags.entities, "entities", defaultPopulation, "number of entities the demo keeps alive")
	f.BoolVar(&flags.keys, "keys", false, "read key presses from stdin")

	return cmd
}

func run(cmd *cobra.Command, flags rootFlags) error {
	telOpts, err := flags.telemetryOptions(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if flags.entities <= 0 {
		return eris.New("--entities must be positive")
	}

	tel, err := telemetry.New(telOpts)
	if err != nil {
		return eris.Wrap(err, "failed to initialize telemetry")
	}
	tel.Logger = tel.Logger.With().Str("run_id", uuid.NewString()).Logger()
	defer shutdown(&tel)
	defer tel.RecoverAndFlush(true)

	g, err := game.New(game.Options{
		TickRate:  flags.tickRate,
		MaxTicks:  flags.ticks,
		Telemetry: &tel,
	})
	if err != nil {
		return eris.Wrap(err, "failed to create game")
	}
	if err := setupDemo(g, flags.entities); err != nil {
		return eris.Wrap(err, "failed to set up demo world")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		// The input forwarder has nothing left to do once the loop returns.
		defer cancel()
		err := g.Run(ctx)
		if errors.Is(err, context.Canceled) {
			tel.Logger.Info().Msg("interrupted")
			return nil
		}
		return err
	})
	if flags.keys {
		lines := scanLines(ctx, cmd.InOrStdin())
		eg.Go(func() error {
			return forwardKeys(ctx, lines, g.Inputs(), tel.GetLogger("input"))
		})
	}

	if err := eg.Wait(); err != nil {
		tel.CaptureException(ctx, err)
		tel.Logger.Error().Err(err).Msg("game loop failed")
		return err
	}
	return nil
}

func shutdown(tel *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := tel.Shutdown(ctx); err != nil {
		tel.Logger.Error().Err(err).Msg("telemetry shutdown error")
	}
}

// telemetryOptions converts the log flags into telemetry options. Unset flags leave the
// environment in charge.
func (f rootFlags) telemetryOptions(stdout io.Writer) (telemetry.Options, error) {
	opts := telemetry.Options{ServiceName: "kengen"}

	if f.logLevel != "" {
		level, err := parseLogLevel(f.logLevel)
		if err != nil {
			return opts, err
		}
		opts.LogLevel = level
	}
	if f.logFormat != "" {
		opts.LogFormat = telemetry.ParseLogFormat(f.logFormat)
		if opts.LogFormat == telemetry.LogFormatUndefined {
			return opts, eris.Errorf("invalid --logformat %q: must be json or pretty", f.logFormat)
		}
	}
	if f.logOutput != "" {
		opts.LogPath = f.logOutput
	} else {
		opts.LogOutput = stdout
	}
	return opts, nil
}

// parseLogLevel accepts zerolog level names plus the "warning" and "critical" aliases.
func parseLogLevel(s string) (string, error) {
	switch strings.ToLower(s) {
	case "warning":
		return zerolog.WarnLevel.String(), nil
	case "critical":
		return zerolog.ErrorLevel.String(), nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return "", eris.Errorf("invalid --loglevel %q", s)
	}
	return level.String(), nil
}

// keyEvents maps a line of input to the event it stands for.
var keyEvents = map[string]game.Event{ //nolint:gochecknoglobals // lookup table
	"q":      game.EventQuit,
	"quit":   game.EventQuit,
	"esc":    game.EventKeyEscape,
	"escape": game.EventKeyEscape,
	"p":      game.EventKeyPause,
	";":      game.EventKeyStop,
	"s":      game.EventKeyStop,
	"d":      game.EventKeyDebug,
}

// scanLines reads r line by line on its own goroutine. Reads from a terminal can't be interrupted,
// so the goroutine stays blocked in a read if the game exits first. The channel is closed at EOF.
func scanLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// forwardKeys pushes the event of each known key to the queue until the input ends or ctx is done.
func forwardKeys(ctx context.Context, lines <-chan string, inputs *game.InputQueue, logger zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				logger.Debug().Msg("input closed")
				return nil
			}
			key := strings.ToLower(strings.TrimSpace(line))
			ev, known := keyEvents[key]
			if !known {
				logger.Warn().Str("key", key).Msg("unknown key")
				continue
			}
			inputs.Push(ev)
		}
	}
}
