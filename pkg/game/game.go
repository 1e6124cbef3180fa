// Package game drives an ecs.Registry at a fixed tick rate. Input events move the loop between
// running, paused and stopped states, and every running tick flushes the registry before running
// the game's systems in registration order.
package game

import (
	"context"
	"time"

	"github.com/kengen-engine/kengen/pkg/ecs"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// tightFrameSlack is the remaining frame budget below which a frame is reported as tight.
const tightFrameSlack = 2 * time.Millisecond

// Game owns a registry and the loop that ticks it.
type Game struct {
	registry *ecs.Registry
	systems  []TickSystem
	inputs   *InputQueue
	events   []Event // Reused drain buffer

	state  RunState
	debug  bool
	ticks  uint64 // Loop iterations so far
	frames *FrameWindow

	options Options
	period  time.Duration
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// New creates a stopped game with an empty registry.
func New(opts Options) (*Game, error) {
	cfg, err := loadGameConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load game config")
	}
	options := newDefaultOptions()
	cfg.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return nil, eris.Wrap(err, "invalid game options")
	}

	logger := zerolog.Nop()
	tracer := noop.NewTracerProvider().Tracer("game")
	if options.Telemetry != nil {
		logger = options.Telemetry.GetLogger("game")
		tracer = options.Telemetry.Tracer
	}

	registryLogger := logger.With().Str("subsystem", "registry").Logger()

	return &Game{
		registry: ecs.NewRegistry(ecs.WithLogger(registryLogger)),
		systems:  make([]TickSystem, 0),
		inputs:   NewInputQueue(),
		events:   make([]Event, 0, initialInputCapacity),
		state:    StateStopped,
		frames:   NewFrameWindow(options.FrameWindow),
		options:  options,
		period:   options.period(),
		logger:   logger,
		tracer:   tracer,
	}, nil
}

// Registry returns the game's registry. It must only be used from the goroutine running the loop,
// or before the loop starts.
func (g *Game) Registry() *ecs.Registry {
	return g.registry
}

// Inputs returns the queue input sources push events to.
func (g *Game) Inputs() *InputQueue {
	return g.inputs
}

// State returns the current run state.
func (g *Game) State() RunState {
	return g.state
}

// Debug reports whether debug mode is on.
func (g *Game) Debug() bool {
	return g.debug
}

// Ticks returns the number of ticks stepped so far, in any state.
func (g *Game) Ticks() uint64 {
	return g.ticks
}

// AverageFrame returns the mean duration of the recent frames.
func (g *Game) AverageFrame() (time.Duration, bool) {
	return g.frames.Average()
}

// AddSystem appends a system to the tick order. Names must be unique.
func (g *Game) AddSystem(system TickSystem) error {
	for _, s := range g.systems {
		if s.Name() == system.Name() {
			return eris.Errorf("tick system %s already added", system.Name())
		}
	}
	g.systems = append(g.systems, system)
	return nil
}

// Start moves a stopped game to running.
func (g *Game) Start() {
	if g.state == StateStopped {
		g.setState(StateRunning)
	}
}

// Step advances the game by one tick: it applies buffered input and, when running, flushes the
// registry and runs every system. It returns false once the game is exiting.
func (g *Game) Step(ctx context.Context, dt time.Duration) (bool, error) {
	g.ticks++

	g.events = g.events[:0]
	g.inputs.drain(&g.events)
	for _, ev := range g.events {
		g.handleInput(ev)
	}

	switch g.state {
	case StateRunning:
		if err := g.update(ctx, dt); err != nil {
			return true, err
		}
	case StateResuming:
		g.setState(StateRunning)
	case StateExiting:
		return false, nil
	case StateStopped, StatePaused:
	}
	return true, nil
}

func (g *Game) handleInput(ev Event) {
	if ev == EventKeyDebug {
		g.debug = !g.debug
		g.logger.Debug().Bool("debug", g.debug).Msg("debug mode toggled")
		return
	}

	next := transition(g.state, ev)
	if next == g.state {
		g.logger.Debug().Stringer("event", ev).Stringer("state", g.state).Msg("input ignored")
		return
	}
	g.setState(next)
}

func (g *Game) setState(next RunState) {
	g.logger.Info().Stringer("from", g.state).Stringer("to", next).Msg("run state changed")
	g.state = next
}

// update runs one simulated tick.
func (g *Game) update(ctx context.Context, dt time.Duration) error {
	ctx, span := g.tracer.Start(ctx, "game.tick",
		trace.WithAttributes(
			attribute.Int64("tick", int64(g.ticks)), //nolint:gosec // tick counts never reach 2^63
			attribute.Int64("dt_us", dt.Microseconds()),
		))
	defer span.End()

	g.registry.Update()

	for _, system := range g.systems {
		if err := system.Tick(g.registry, dt); err != nil {
			err = eris.Wrapf(err, "tick system %s failed", system.Name())
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return err
		}
	}
	span.SetAttributes(attribute.Int("entities", g.registry.NumEntities()))
	span.SetStatus(otelcodes.Ok, "")

	if g.debug {
		g.dumpEntities(ctx)
	}
	return nil
}

// dumpEntities logs every live entity at debug level.
func (g *Game) dumpEntities(ctx context.Context) {
	logger := g.logger
	if g.options.Telemetry != nil {
		logger = g.options.Telemetry.GetLoggerWithTrace(ctx, "game")
	}
	logger = logger.With().Uint64("tick", g.ticks).Logger()

	for _, e := range g.registry.Entities() {
		data, err := g.registry.DumpEntity(e)
		if err != nil {
			logger.Warn().Err(err).Stringer("entity", e).Msg("failed to dump entity")
			continue
		}
		logger.Debug().RawJSON("entity", data).Msg("entity")
	}
}

// Run starts the game and steps it at the configured tick rate until the context is canceled, the
// game exits, a system fails or MaxTicks ticks have run. A canceled context returns its error.
func (g *Game) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.period)
	defer ticker.Stop()

	g.Start()
	g.logger.Info().
		Float64("tick_rate", g.options.TickRate).
		Uint64("max_ticks", g.options.MaxTicks).
		Msg("game loop running")

	prev := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(prev)
			prev = now
			g.frames.Push(dt)

			running, err := g.Step(ctx, dt)
			if err != nil {
				return eris.Wrap(err, "failed to step game")
			}
			if !running {
				g.logger.Info().Uint64("ticks", g.ticks).Msg("game exiting")
				return nil
			}

			g.reportFrame(g.period, time.Since(now))

			if g.options.MaxTicks > 0 && g.ticks >= g.options.MaxTicks {
				g.logger.Info().Uint64("ticks", g.ticks).Msg("tick limit reached")
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reportFrame logs frames that nearly used up their budget, and the average frame time once per
// full window.
func (g *Game) reportFrame(period, elapsed time.Duration) {
	if slack := period - elapsed; slack <= tightFrameSlack {
		g.logger.Info().Dur("slack", slack).Msg("frames getting tight")
	}

	if g.ticks%uint64(g.options.FrameWindow) != 0 { //nolint:gosec // validated positive
		return
	}
	if avg, ok := g.frames.Average(); ok && avg > 0 {
		g.logger.Debug().
			Dur("avg_frame", avg).
			Float64("fps", float64(time.Second)/float64(avg)).
			Msg("frame stats")
	}
}
