// Package sentry reports errors and panics to Sentry. Every function is a no-op until New has been
// called with a DSN.
package sentry

import (
	"context"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultFlushTimeout bounds how long a flush waits for buffered events.
	DefaultFlushTimeout = 5 * time.Second

	// expiredFlushTimeout is the last-chance wait used when the caller's deadline already passed.
	expiredFlushTimeout = time.Second
)

// Options configures the Sentry client. Reporting stays off when Dsn is empty.
type Options struct {
	Dsn         string
	Environment string
	Release     string            // e.g. kengen@dev
	Tags        map[string]string // Added to every event
}

// New initializes the process-wide Sentry client.
func New(opt Options) error {
	if opt.Dsn == "" {
		return nil
	}

	err := sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              opt.Dsn,
		Environment:      opt.Environment,
		Release:          opt.Release,
		Tags:             opt.Tags,
		AttachStacktrace: true,
	})
	if err != nil {
		return eris.Wrap(err, "failed to initialize sentry")
	}
	return nil
}

// CaptureException reports a handled error. Events carry the trace and span IDs of the span in
// ctx, if any.
func CaptureException(ctx context.Context, err error) {
	if err == nil || !enabled() {
		return
	}

	hub := sentrygo.CurrentHub().Clone()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		hub.Scope().SetTags(map[string]string{
			"trace_id": sc.TraceID().String(),
			"span_id":  sc.SpanID().String(),
		})
	}
	hub.CaptureException(err)
}

// CapturePanic reports a recovered panic value and waits for it to be sent.
func CapturePanic(r any) {
	if !enabled() {
		return
	}
	sentrygo.CurrentHub().Recover(r)
	Flush(context.Background())
}

// Flush waits for buffered events, up to the deadline of ctx or DefaultFlushTimeout.
func Flush(ctx context.Context) {
	if !enabled() {
		return
	}
	sentrygo.Flush(flushTimeout(ctx))
}

func flushTimeout(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return DefaultFlushTimeout
	}

	switch until := time.Until(deadline); {
	case until <= 0:
		return expiredFlushTimeout
	case until < DefaultFlushTimeout:
		return until
	default:
		return DefaultFlushTimeout
	}
}

func enabled() bool {
	return sentrygo.CurrentHub().Client() != nil
}
