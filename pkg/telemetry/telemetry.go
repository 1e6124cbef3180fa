// Package telemetry builds the logger, tracer and error reporter shared by the game loop and the
// command line.
package telemetry

import (
	"context"
	"errors"

	"github.com/kengen-engine/kengen/pkg/telemetry/sentry"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles the service's logger and tracer.
type Telemetry struct {
	Logger      zerolog.Logger
	Tracer      trace.Tracer
	serviceName string

	shutdown func(context.Context) error
}

// New builds telemetry from the environment, overridden by opts.
func New(opts Options) (Telemetry, error) {
	config, err := loadConfig()
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to load otel config")
	}

	options := newDefaultOptions()
	config.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return Telemetry{}, eris.Wrap(err, "invalid otel options")
	}

	out, closeOutput, err := options.openLogOutput()
	if err != nil {
		return Telemetry{}, err
	}
	logger := newLogger(options, out)

	tracer, shutdownTracer, err := setupTracer(context.Background(), options)
	if err != nil {
		if closeOutput != nil {
			err = errors.Join(err, closeOutput())
		}
		return Telemetry{}, eris.Wrap(err, "failed to setup tracer")
	}

	sentryOpts := options.SentryOptions
	sentryOpts.Release = options.ServiceName + "@" + options.ServiceVersion
	if err := sentry.New(sentryOpts); err != nil {
		logger.Warn().Err(err).Msg("sentry disabled")
	}

	shutdown := func(ctx context.Context) error {
		sentry.Flush(ctx)
		err := shutdownTracer(ctx)
		if closeOutput != nil {
			err = errors.Join(err, closeOutput())
		}
		return err
	}

	return Telemetry{
		Logger:      logger,
		Tracer:      tracer,
		serviceName: options.ServiceName,
		shutdown:    shutdown,
	}, nil
}

// Shutdown flushes pending spans and error reports and closes the log file, if any.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.shutdown != nil {
		return t.shutdown(ctx)
	}
	return nil
}

// GetLogger returns a component-specific logger.
func (t *Telemetry) GetLogger(component string) zerolog.Logger {
	return t.Logger.With().Str("component", t.serviceName+"."+component).Logger()
}

// GetLoggerWithTrace returns a component-specific logger enriched with trace context.
func (t *Telemetry) GetLoggerWithTrace(ctx context.Context, component string) zerolog.Logger {
	span := trace.SpanFromContext(ctx)

	logger := t.Logger.With().Str("component", t.serviceName+"."+component)

	if span.IsRecording() {
		spanCtx := span.SpanContext()
		logger = logger.
			Str("trace_id", spanCtx.TraceID().String()).
			Str("span_id", spanCtx.SpanID().String())
	}

	return logger.Logger()
}

// CaptureException reports a handled error. It is a no-op when Sentry is off.
func (t *Telemetry) CaptureException(ctx context.Context, err error) {
	sentry.CaptureException(ctx, err)
}

// RecoverAndFlush reports a panic, if any, and flushes pending reports. Call it deferred.
func (t *Telemetry) RecoverAndFlush(repanic bool) {
	if r := recover(); r != nil {
		sentry.CapturePanic(r)
		if repanic {
			panic(r)
		}
		return
	}
	sentry.Flush(context.Background())
}
