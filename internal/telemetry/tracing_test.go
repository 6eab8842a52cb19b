package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpanRecordsStatus(t *testing.T) {
	recorder := installRecorder(t)

	ctx, span := StartSpan(context.Background(), "ok", attribute.String("k", "v"))
	if TraceID(ctx) == "" {
		t.Fatal("expected trace id in context")
	}
	SetSpanSuccess(span)
	span.End()

	_, failed := StartSpan(context.Background(), "failed")
	RecordSpanError(failed, errors.New("boom"))
	failed.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Ok {
		t.Fatalf("expected ok status, got %v", spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error || spans[1].Status().Description != "boom" {
		t.Fatalf("expected error status, got %v", spans[1].Status())
	}
	if len(spans[1].Events()) == 0 {
		t.Fatal("expected error event")
	}
}

func TestHelpersTolerateNil(t *testing.T) {
	RecordSpanError(nil, errors.New("boom"))
	SetSpanSuccess(nil)
	if TraceID(context.Background()) != "" {
		t.Fatal("expected empty trace id without span")
	}
}
