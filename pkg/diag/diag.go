// Package diag is the out-of-band diagnostic channel for router failures.
//
// Subscriber callbacks run outside the router's control: a panicking
// subscriber must not stop the remaining subscribers, so the failure is
// handed to a Reporter instead of propagating. The default reporter logs
// through slog; SentryReporter additionally ships failures to Sentry.
package diag

import (
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// Reporter receives failures the router cannot surface to its caller.
type Reporter interface {
	// ReportPanic is called with the recovered value and stack of a
	// subscriber (or hook) that panicked during notification.
	ReportPanic(op string, recovered any, stack []byte)

	// ReportError is called for non-fatal errors on paths with no caller
	// to return them to.
	ReportError(op string, err error)
}

// LogReporter reports through a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter writing to the given logger.
// A nil logger falls back to slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// ReportPanic implements Reporter.
func (r *LogReporter) ReportPanic(op string, recovered any, stack []byte) {
	r.logger.Error("panic recovered",
		"op", op,
		"panic", recovered,
		"stack", string(stack))
}

// ReportError implements Reporter.
func (r *LogReporter) ReportError(op string, err error) {
	r.logger.Error("router error", "op", op, "error", err)
}

// SentryReporter logs locally and ships failures to Sentry.
type SentryReporter struct {
	local *LogReporter
}

// NewSentryReporter initializes the Sentry client and returns a reporter.
// When initialization fails, the local reporter is returned instead so
// diagnostics never go dark.
func NewSentryReporter(dsn, environment string, logger *slog.Logger) Reporter {
	local := NewLogReporter(logger)
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		local.ReportError("sentry.init", fmt.Errorf("unable to init Sentry: %w", err))
		return local
	}
	return &SentryReporter{local: local}
}

// ReportPanic implements Reporter.
func (r *SentryReporter) ReportPanic(op string, recovered any, stack []byte) {
	r.local.ReportPanic(op, recovered, stack)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetExtra("op", op)
		scope.SetExtra("stack", string(stack))
		sentry.CaptureException(fmt.Errorf("panic in %s: %v", op, recovered))
	})
}

// ReportError implements Reporter.
func (r *SentryReporter) ReportError(op string, err error) {
	r.local.ReportError(op, err)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetExtra("op", op)
		sentry.CaptureException(err)
	})
}
