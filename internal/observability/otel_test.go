package observability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracerConfig_Sampler(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "AlwaysOnSampler"},
		{100, "AlwaysOnSampler"},
		{250, "AlwaysOnSampler"},
		{25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := TracerConfig{SamplePercent: tt.percent}.sampler().Description()
		want := "ParentBased{root:" + tt.want
		if !strings.HasPrefix(got, want) {
			t.Fatalf("percent %d: got %q want prefix %q", tt.percent, got, want)
		}
	}
}

func TestStartAndEndSpan(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, ok := StartSpan(context.Background(), "reports.render", attribute.String("report.kind", "activity"))
	EndSpan(ok, nil, "ok")

	_, failed := StartSpan(context.Background(), "reports.render", attribute.String("report.kind", "treasurer"))
	EndSpan(failed, errors.New("render timed out"), "timeout")

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status.Code == codes.Error {
		t.Fatalf("successful render marked as error")
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "timeout" || len(spans[1].Events) == 0 {
		t.Fatalf("failed render: status %+v events %d", spans[1].Status, len(spans[1].Events))
	}

	attrs := map[attribute.Key]string{}
	for _, kv := range spans[1].Attributes {
		attrs[kv.Key] = kv.Value.Emit()
	}
	if attrs["report.kind"] != "treasurer" || attrs["outcome"] != "timeout" {
		t.Fatalf("attributes: %v", attrs)
	}
}
