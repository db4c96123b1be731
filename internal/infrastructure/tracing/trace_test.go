package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedTracer() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return New("test", zap.New(core)), logs
}

func TestStartSpanCreatesRoot(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	span, ctx := tracer.StartSpan(context.Background(), "root")

	assert.True(t, id.IsValidPrefixed(span.TraceID.String(), id.TracePrefix))
	assert.Empty(t, span.ParentID)
	assert.Equal(t, span.TraceID, GetTraceID(ctx))
	assert.Equal(t, span.SpanID, GetSpanID(ctx))
}

func TestStartSpanNestsChild(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	parent, ctx := tracer.StartSpan(context.Background(), "parent")
	child, _ := tracer.StartSpan(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
}

func TestExtractInject(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderTraceID, "trc_abc")
	h.Set(HeaderSpanID, "spn_def")

	ctx := Extract(context.Background(), h)
	assert.Equal(t, id.TraceID("trc_abc"), GetTraceID(ctx))

	out := map[string]string{}
	Inject(ctx, func(k, v string) { out[k] = v })
	assert.Equal(t, map[string]string{HeaderTraceID: "trc_abc", HeaderSpanID: "spn_def"}, out)
}

func TestCloseFlushesSpans(t *testing.T) {
	tracer, logs := newObservedTracer()

	span, _ := tracer.StartSpan(context.Background(), "work")
	span.SetTag("k", "v")
	span.Finish()
	tracer.Submit(span)
	tracer.Close()

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "span completed", entry.Message)
	assert.Equal(t, "work", entry.ContextMap()["operation"])

	// Submitting after close must not panic.
	tracer.Submit(span)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer()

	var seen id.TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/ping", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderTraceID, "trc_incoming")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	tracer.Close()

	assert.Equal(t, id.TraceID("trc_incoming"), seen)
	assert.Equal(t, "trc_incoming", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "GET /ping", logs.All()[0].ContextMap()["operation"])
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
}
