package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/viant/kcore"

var spanKinds = map[string]trace.SpanKind{
	"SERVER":   trace.SpanKindServer,
	"CLIENT":   trace.SpanKindClient,
	"PRODUCER": trace.SpanKindProducer,
	"CONSUMER": trace.SpanKindConsumer,
	"INTERNAL": trace.SpanKindInternal,
}

var (
	mux      sync.Mutex
	provider *sdktrace.TracerProvider
	output   io.Closer
)

// Init writes kernel spans as JSON to outputFile, or to stdout when
// outputFile is empty.
func Init(serviceName, serviceVersion, outputFile string) error {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		w, closer = f, f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err == nil {
		err = install(serviceName, serviceVersion, exporter, closer)
	}
	if err != nil && closer != nil {
		_ = closer.Close()
	}
	return err
}

// InitWithExporter sends kernel spans to exporter. A nil exporter is ignored.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	return install(serviceName, serviceVersion, exporter, nil)
}

// install makes a synchronous provider over exporter the global one and
// shuts down the provider it replaces.
func install(serviceName, serviceVersion string, exporter sdktrace.SpanExporter, closer io.Closer) error {
	ctx := context.Background()
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	))
	if err != nil {
		return err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter), sdktrace.WithResource(res))
	mux.Lock()
	previous, previousOutput := provider, output
	provider, output = tp, closer
	mux.Unlock()
	otel.SetTracerProvider(tp)
	return shutdown(ctx, previous, previousOutput)
}

// Shutdown flushes and detaches the installed exporter. Spans started
// afterwards are not recorded.
func Shutdown(ctx context.Context) error {
	mux.Lock()
	tp, out := provider, output
	provider, output = nil, nil
	mux.Unlock()
	return shutdown(ctx, tp, out)
}

func shutdown(ctx context.Context, tp *sdktrace.TracerProvider, out io.Closer) error {
	if tp == nil {
		return nil
	}
	err := tp.Shutdown(ctx)
	if out != nil {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

// Span is a kernel operation in flight. A nil *Span is valid and records
// nothing.
type Span struct {
	span trace.Span
}

// WithAttributes tags the span, typically with a pid or a URL.
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	s.span.SetAttributes(kvs...)
	return s
}

// SetStatus marks the span failed with err, or ok when err is nil.
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err == nil {
		s.span.SetStatus(codes.Ok, "")
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// StartSpan opens span name under the span carried by ctx. kind is one of
// SERVER, CLIENT, PRODUCER, CONSUMER or INTERNAL; anything else is INTERNAL.
func StartSpan(ctx context.Context, name, kind string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	spanKind, ok := spanKinds[kind]
	if !ok {
		spanKind = trace.SpanKindInternal
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithSpanKind(spanKind))
	return ctx, &Span{span: span}
}

// EndSpan closes sp with the outcome err.
func EndSpan(sp *Span, err error) {
	if sp == nil {
		return
	}
	sp.SetStatus(err)
	sp.span.End()
}

// SpanFromContext returns the recording span in ctx, if any.
func SpanFromContext(ctx context.Context) (*Span, bool) {
	sp := trace.SpanFromContext(ctx)
	if !sp.SpanContext().IsValid() {
		return nil, false
	}
	return &Span{span: sp}, true
}
