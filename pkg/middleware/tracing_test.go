package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// captureSpans swaps in an in-memory exporter for the duration of the test.
func captureSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func tracedCatalog(status int) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Tracing("storefront"))
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
	return r
}

func spanAttr(span tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_NamesSpanAfterRoutePattern(t *testing.T) {
	exporter := captureSpans(t)

	rec := httptest.NewRecorder()
	tracedCatalog(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/42", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "GET /api/products/{id}" {
		t.Errorf("span name = %q, want route pattern", spans[0].Name)
	}
	if v, ok := spanAttr(spans[0], "http.route"); !ok || v.AsString() != "/api/products/{id}" {
		t.Errorf("http.route = %v, want /api/products/{id}", v)
	}
}

func TestTracing_RecordsStatusCode(t *testing.T) {
	exporter := captureSpans(t)

	rec := httptest.NewRecorder()
	tracedCatalog(http.StatusNotFound).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/999", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	v, ok := spanAttr(spans[0], "http.status_code")
	if !ok || v.AsInt64() != 404 {
		t.Errorf("http.status_code = %v, want 404", v)
	}
	if spans[0].Status.Code != codes.Unset {
		t.Errorf("span status = %v, want Unset for a 4xx", spans[0].Status.Code)
	}
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	exporter := captureSpans(t)

	rec := httptest.NewRecorder()
	tracedCatalog(http.StatusInternalServerError).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/1", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want Error for a 5xx", spans[0].Status.Code)
	}
}

func TestTracing_ContinuesInboundTrace(t *testing.T) {
	exporter := captureSpans(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/1", nil)
	req.Header.Set("traceparent", "00-6d81c5caa63a4f0ab6dafc2d54b4e012-31c2b7a4f90d11aa-01")
	rec := httptest.NewRecorder()
	tracedCatalog(http.StatusOK).ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := spans[0].SpanContext.TraceID().String(); got != "6d81c5caa63a4f0ab6dafc2d54b4e012" {
		t.Errorf("trace ID = %s, want the inbound trace ID", got)
	}
	if rec.Header().Get("traceparent") == "" {
		t.Error("response should echo a traceparent header")
	}
}
