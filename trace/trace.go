// Package trace records a span per test execution, with a child span
// per browser step of the execution.
package trace

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/playwright-enhanced/pwe/common"
)

const tracerName = "github.com/playwright-enhanced/pwe"

// TracerProvider is the source of the underlying tracer.
type TracerProvider interface {
	Tracer(name string, options ...trace.TracerOption) trace.Tracer
}

type execution struct {
	ctx  context.Context
	span trace.Span
}

// Tracer tracks the live span of every running execution.
type Tracer struct {
	tracer trace.Tracer
	logger *common.Logger

	mu         sync.RWMutex
	executions map[string]*execution
}

// NewTracer returns a Tracer creating its spans from tp.
func NewTracer(logger *common.Logger, tp TracerProvider) *Tracer {
	return &Tracer{
		tracer:     tp.Tracer(tracerName),
		logger:     logger,
		executions: make(map[string]*execution),
	}
}

// TraceExecution starts the span of the execution of test on engine and
// records it as the live span of executionID. A previous live span of
// executionID is ended first. The span ends with EndExecution.
func (t *Tracer) TraceExecution(ctx context.Context, executionID, test, engine string) (context.Context, trace.Span) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.executions[executionID]; ok {
		prev.span.End()
	}
	ctx, span := t.tracer.Start(ctx, "execution", trace.WithAttributes(
		attribute.String("test.name", test),
		attribute.String("browser.engine", engine),
	))
	t.executions[executionID] = &execution{ctx: ctx, span: span}

	t.logger.Debugf("trace:TraceExecution", "eid:%s tid:%s", executionID, traceID(span))

	return ctx, span
}

// TraceStep starts a span named name as a child of the live span of
// executionID, or of ctx when executionID has none. The caller ends it.
func (t *Tracer) TraceStep(
	ctx context.Context, executionID, name string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	t.mu.RLock()
	exec, ok := t.executions[executionID]
	t.mu.RUnlock()

	if ok {
		ctx = exec.ctx
	} else {
		t.logger.Debugf("trace:TraceStep", "eid:%s step:%s no live execution", executionID, name)
	}
	return t.tracer.Start(ctx, name, opts...)
}

// EndExecution ends the live span of executionID with an error status
// when failed is set.
func (t *Tracer) EndExecution(executionID string, failed bool) {
	t.mu.Lock()
	exec, ok := t.executions[executionID]
	delete(t.executions, executionID)
	t.mu.Unlock()

	if !ok {
		return
	}
	if failed {
		exec.span.SetStatus(codes.Error, "test failed")
	} else {
		exec.span.SetStatus(codes.Ok, "")
	}
	exec.span.End()

	t.logger.Debugf("trace:EndExecution", "eid:%s tid:%s failed:%t", executionID, traceID(exec.span), failed)
}

// Live returns the number of executions whose span is still open.
func (t *Tracer) Live() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.executions)
}

func traceID(span trace.Span) string {
	sc := span.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
