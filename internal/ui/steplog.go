package ui

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// StepLogger is a span processor that logs demo runs and their steps.
// Root spans are runs, child spans are steps.
type StepLogger struct {
	logger *slog.Logger
}

// NewStepLogger returns a StepLogger writing to logger, or to the default
// slog logger when logger is nil.
func NewStepLogger(logger *slog.Logger) *StepLogger {
	return &StepLogger{logger: logger}
}

func (p *StepLogger) log() *slog.Logger {
	if p == nil || p.logger == nil {
		return slog.Default()
	}
	return p.logger
}

func (p *StepLogger) OnStart(_ context.Context, span sdktrace.ReadWriteSpan) {
	if span.Parent().IsValid() {
		return
	}
	p.log().Debug("Demo started.", "demo", span.Name())
}

func (p *StepLogger) OnEnd(span sdktrace.ReadOnlySpan) {
	duration := span.EndTime().Sub(span.StartTime())
	status := span.Status()

	if !span.Parent().IsValid() {
		aborted := false
		for _, ev := range span.Events() {
			if ev.Name == "demo.aborted" {
				aborted = true
			}
		}
		p.log().Debug("Demo finished.", "demo", span.Name(), "aborted", aborted, "duration", duration)
		return
	}

	if status.Code == codes.Error {
		p.log().Debug("Demo step failed.", "step", span.Name(), "duration", duration, "err", status.Description)
		return
	}
	p.log().Debug("Demo step done.", "step", span.Name(), "duration", duration)
}

func (p *StepLogger) Shutdown(context.Context) error {
	return nil
}

func (p *StepLogger) ForceFlush(context.Context) error {
	return nil
}
