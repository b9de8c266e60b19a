package http

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Middleware func(next Handler) Handler

// RecoverMiddleware turns a panicking handler into a 500 with an empty body.
func RecoverMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx *RequestCtx) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("handler panicked",
						"conn", ctx.ConnID,
						"method", ctx.Request.Method,
						"path", ctx.Request.Path,
						"panic", fmt.Sprint(recovered))

					ctx.Response.Reset()
					ctx.Response.WithStatus(StatusInternalServerError).WithText("")
				}
			}()

			next(ctx)
		}
	}
}

// TraceMiddleware starts a server span per request and records request count and duration.
func TraceMiddleware(tracer trace.Tracer, meter metric.Meter) Middleware {
	requests, err := meter.Int64Counter("httpd.server.requests",
		metric.WithDescription("The number of requests served by status code"),
		metric.WithUnit("{request}"))
	if err != nil {
		otel.Handle(err)
	}

	duration, err := meter.Float64Histogram("httpd.server.request.duration",
		metric.WithDescription("Time spent routing and handling a request"),
		metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
	}

	return func(next Handler) Handler {
		return func(ctx *RequestCtx) {
			start := time.Now()

			spanCtx, span := tracer.Start(ctx.Context, ctx.Request.Method+" "+ctx.Request.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", ctx.Request.Method),
					attribute.String("url.path", ctx.Request.Path),
					attribute.String("user_agent.original", ctx.Request.Headers.Get("user-agent")),
				))
			defer span.End()

			ctx.Context = spanCtx
			next(ctx)

			status := int(ctx.Response.Status)
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= int(StatusInternalServerError) {
				span.SetStatus(codes.Error, StatusText(ctx.Response.Status))
			}

			attrs := metric.WithAttributes(
				attribute.String("http.request.method", ctx.Request.Method),
				attribute.Int("http.response.status_code", status),
			)
			if requests != nil {
				requests.Add(spanCtx, 1, attrs)
			}
			if duration != nil {
				duration.Record(spanCtx, time.Since(start).Seconds(), attrs)
			}
		}
	}
}
