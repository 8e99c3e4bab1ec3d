package web

import (
	"net/http"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestRouteName(t *testing.T) {
	cases := map[string]string{
		"/api/posts/hello":  "/api/posts/{slug}",
		"/api/posts":        "/api/posts",
		"/blog/hello":       "/blog/{slug}",
		"/static/style.css": "/static/*",
		"/healthz":          "/healthz",
	}
	for in, want := range cases {
		if got := routeName(in); got != want {
			t.Fatalf("routeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	srv := NewServer(Config{ListenAddr: "127.0.0.1:0"})
	serve(srv, http.MethodGet, "/api/posts/missing", nil)
	serve(srv, http.MethodPost, "/api/send-email", nil)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "GET /api/posts/{slug}" {
		t.Fatalf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].SpanKind() != trace.SpanKindServer {
		t.Fatalf("expected server span, got %v", spans[0].SpanKind())
	}
	if spans[0].Status().Code == codes.Error {
		t.Fatalf("404 must not mark the span as an error")
	}
	var status int64
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "http.response.status_code" {
			status = kv.Value.AsInt64()
		}
	}
	if status != http.StatusNotFound {
		t.Fatalf("expected status attribute 404, got %d", status)
	}
}
