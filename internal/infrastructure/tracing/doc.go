/*
Package tracing provides lightweight request tracing.

An inbound request gets a trace (reusing X-Trace-ID when the caller sends
one) and a root span. Outbound calls to the completions and search APIs
open child spans and carry the trace headers. Finished spans are logged by
a background collector through zap.

# Usage

	tracer := tracing.New("reze-backend", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "openrouter.stream")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
	tracing.Inject(ctx, req.SetHeader)
*/
package tracing
