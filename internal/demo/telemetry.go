package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName       = "h2o/internal/demo"
	PlanEventName    = "demo.plan"
	AbortedEventName = "demo.aborted"
	PlanJSONKey      = "demo.plan.json"
	StepCountKey     = "demo.steps"
	StepIndexKey     = "demo.step.index"
	ResultKey        = "demo.result"
	defaultName      = "demo"
)

// PlannedStep describes one block of a run in the plan attached to the root span.
type PlannedStep struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type operation struct {
	ctx    context.Context
	tracer trace.Tracer
	span   trace.Span
	name   string
}

func startOperation(ctx context.Context, tracer trace.Tracer, seq Sequence) *operation {
	name := strings.TrimSpace(seq.Name)
	if name == "" {
		name = defaultName
	}

	plan := make([]PlannedStep, 0, len(seq.Blocks))
	for i, b := range seq.Blocks {
		plan = append(plan, PlannedStep{ID: stepID(name, i), Title: blockTitle(b, i)})
	}
	attrs := []attribute.KeyValue{attribute.Int(StepCountKey, len(plan))}
	if planJSON, err := json.Marshal(plan); err == nil {
		attrs = append(attrs, attribute.String(PlanJSONKey, string(planJSON)))
	}

	spanCtx, span := tracer.Start(ctx, "demo."+name, trace.WithAttributes(attrs...))
	span.AddEvent(PlanEventName, trace.WithAttributes(attrs...))
	return &operation{ctx: spanCtx, tracer: tracer, span: span, name: name}
}

func (o *operation) Context() context.Context {
	if o == nil {
		return context.Background()
	}
	return o.ctx
}

func (o *operation) runStep(ctx context.Context, index int, step Step) error {
	if step == nil {
		return nil
	}
	if o == nil || o.tracer == nil {
		return step(ctx)
	}
	if ctx == nil {
		ctx = o.ctx
	}

	stepCtx, span := o.tracer.Start(ctx, stepID(o.name, index), trace.WithAttributes(
		attribute.Int(StepIndexKey, index),
	))
	defer span.End()

	if err := step(stepCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
		return err
	}
	return nil
}

func (o *operation) end(result Result, err error) {
	if o == nil || o.span == nil {
		return
	}
	o.span.SetAttributes(attribute.String(ResultKey, result.String()))
	switch {
	case err != nil:
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
	case result == Aborted:
		o.span.AddEvent(AbortedEventName)
	}
	o.span.End()
}

func stepID(name string, index int) string {
	return fmt.Sprintf("%s/%d", name, index)
}

// blockTitle is the first comment of a block, or its first line.
func blockTitle(block string, index int) string {
	lines := formatBlock(block)
	for _, l := range lines {
		if l.Comment {
			t := strings.TrimSpace(l.Text)
			t = strings.TrimPrefix(t, "//")
			t = strings.TrimPrefix(t, "#")
			return strings.TrimSpace(t)
		}
	}
	if len(lines) > 0 {
		return strings.TrimSpace(lines[0].Text)
	}
	return fmt.Sprintf("step %d", index)
}
