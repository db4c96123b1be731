package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	calls  atomic.Int32
	body   func() io.Reader
	err    error
	gotKey string
	gotReq types.CompletionRequest
	ctx    context.Context
}

func (f *fakeUpstream) Stream(ctx context.Context, apiKey string, req types.CompletionRequest) (io.ReadCloser, error) {
	f.calls.Add(1)
	f.gotKey = apiKey
	f.gotReq = req
	f.ctx = ctx
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(f.body()), nil
}

type recordingWriter struct {
	bytes.Buffer
	flushes int
	writes  []string
	failAt  int
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if w.failAt > 0 && len(w.writes)+1 >= w.failAt {
		return 0, errors.New("broken pipe")
	}
	w.writes = append(w.writes, string(p))
	return w.Buffer.Write(p)
}

func (w *recordingWriter) Flush() { w.flushes++ }

func frame(content string) string {
	b, _ := json.Marshal(types.CompletionChunk{Choices: []types.CompletionChunkChoice{{Delta: types.MessageDelta{Content: content}}}})
	return "data: " + string(b) + "\n\n"
}

func newRelay(up Upstream) *Relay {
	return New(up, Defaults{Model: "default/model"}, nil, monitoring.NewMetrics())
}

func relayBody(t *testing.T, body io.Reader) (string, Result, error) {
	t.Helper()
	up := &fakeUpstream{body: func() io.Reader { return body }}
	r := newRelay(up)

	call, err := r.Prepare(types.ChatRequest{Message: "hi", OpenRouterAPIKey: "sk"})
	require.NoError(t, err)
	stream, err := r.Open(context.Background(), call)
	require.NoError(t, err)

	w := &recordingWriter{}
	res, err := stream.Pump(w)
	return w.String(), res, err
}

func TestPrepareValidation(t *testing.T) {
	up := &fakeUpstream{}
	r := newRelay(up)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := r.Prepare(types.ChatRequest{Message: msg, OpenRouterAPIKey: "sk"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "message is required", err.Error())
	}
	assert.Equal(t, int32(0), up.calls.Load())
}

func TestPrepareRejectsInvalidContext(t *testing.T) {
	r := newRelay(&fakeUpstream{})
	_, err := r.Prepare(types.ChatRequest{Message: "hi", OpenRouterAPIKey: "sk", Context: json.RawMessage(`{"a":`)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPrepareConfiguration(t *testing.T) {
	up := &fakeUpstream{}
	r := newRelay(up)

	_, err := r.Prepare(types.ChatRequest{Message: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, int32(0), up.calls.Load())
}

func TestPrepareCredentialPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		defaults  Defaults
		req       types.ChatRequest
		wantKey   string
		wantModel string
	}{
		{
			name:      "request values win",
			defaults:  Defaults{APIKey: "env-key", Model: "env/model"},
			req:       types.ChatRequest{Message: "hi", OpenRouterAPIKey: "req-key", OpenRouterModel: "req/model"},
			wantKey:   "req-key",
			wantModel: "req/model",
		},
		{
			name:      "environment fallback",
			defaults:  Defaults{APIKey: "env-key", Model: "env/model"},
			req:       types.ChatRequest{Message: "hi"},
			wantKey:   "env-key",
			wantModel: "env/model",
		},
		{
			name:      "fixed default model",
			defaults:  Defaults{APIKey: "env-key"},
			req:       types.ChatRequest{Message: "hi"},
			wantKey:   "env-key",
			wantModel: types.DefaultModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&fakeUpstream{}, tt.defaults, nil, nil)
			call, err := r.Prepare(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, call.apiKey)
			assert.Equal(t, tt.wantModel, call.Model())
			assert.True(t, call.Request.Stream)
		})
	}
}

func TestPrepareBuildsPrompt(t *testing.T) {
	r := newRelay(&fakeUpstream{})
	call, err := r.Prepare(types.ChatRequest{
		Message:          "What is Go?",
		OpenRouterAPIKey: "sk",
		Context:          json.RawMessage(`{ "query": "go",  "google_results": [] }`),
	})
	require.NoError(t, err)

	msgs := call.Request.Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, types.ChatMessage{Role: "system", Content: SystemInstruction}, msgs[0])
	assert.Equal(t, ContextPreamble+`{"query":"go","google_results":[]}`, msgs[1].Content)
	assert.Equal(t, types.ChatMessage{Role: "user", Content: "What is Go?"}, msgs[2])
}

func TestPrepareCapsContext(t *testing.T) {
	up := &fakeUpstream{body: func() io.Reader { return strings.NewReader("") }}
	r := newRelay(up)

	big := map[string]string{"transcript": strings.Repeat("x", 30000) + "SECRET-TAIL"}
	raw, err := json.Marshal(big)
	require.NoError(t, err)

	call, err := r.Prepare(types.ChatRequest{Message: "hi", OpenRouterAPIKey: "sk", Context: raw})
	require.NoError(t, err)
	assert.True(t, call.ContextTruncated)

	stream, err := r.Open(context.Background(), call)
	require.NoError(t, err)
	_, _ = stream.Pump(&recordingWriter{})

	sent := up.gotReq.Messages[1].Content
	ctxPart := strings.TrimPrefix(sent, ContextPreamble)
	assert.Equal(t, ContextLimit+len(TruncationMarker), len(ctxPart))
	assert.True(t, strings.HasSuffix(ctxPart, TruncationMarker))
	assert.NotContains(t, sent, "SECRET-TAIL")
}

func TestPumpHelloDone(t *testing.T) {
	input := `data: {"choices":[{"delta":{"content":"Hel"}}]}` + "\n" +
		`data: {"choices":[{"delta":{"content":"lo"}}]}` + "\n" +
		"data: [DONE]\n" +
		`data: {"choices":[{"delta":{"content":" ignored"}}]}` + "\n"

	out, res, err := relayBody(t, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
	assert.Equal(t, monitoring.OutcomeDone, res.Outcome)
	assert.Equal(t, 2, res.Fragments)
	assert.Equal(t, int64(5), res.Bytes)
}

func TestPumpStopsReadingAfterDone(t *testing.T) {
	reads := 0
	body := readerFunc(func(p []byte) (int, error) {
		reads++
		if reads == 1 {
			return copy(p, frame("A")+"data: [DONE]\n"), nil
		}
		t.Fatal("read after [DONE]")
		return 0, io.EOF
	})

	out, _, err := relayBody(t, body)
	require.NoError(t, err)
	assert.Equal(t, "A", out)
	assert.Equal(t, 1, reads)
}

func TestPumpSkipsMalformedFrames(t *testing.T) {
	input := frame("one") +
		"data: {not json}\n" +
		"data: \n" +
		frame(" two") +
		"data: [DONE]\n"

	out, res, err := relayBody(t, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "one two", out)
	assert.Equal(t, 2, res.Malformed)
}

func TestPumpIgnoresNonDataLines(t *testing.T) {
	input := ": OPENROUTER PROCESSING\n" +
		"event: message\n" +
		"id: 7\n" +
		"\r\n" +
		"data:" + strings.TrimPrefix(frame("x"), "data: ") +
		`data: {"choices":[]}` + "\n" +
		`data: {"choices":[{"delta":{"role":"assistant"}}]}` + "\n" +
		"  data: [DONE]  \r\n"

	out, res, err := relayBody(t, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "x", out)
	assert.Equal(t, 0, res.Malformed)
	assert.Equal(t, monitoring.OutcomeDone, res.Outcome)
}

func TestPumpToleratesSplitReads(t *testing.T) {
	input := frame("Grüße ") + frame("世界 ") + frame("🌍") + "data: [DONE]\n"

	out, res, err := relayBody(t, iotest.OneByteReader(strings.NewReader(input)))
	require.NoError(t, err)
	assert.Equal(t, "Grüße 世界 🌍", out)
	assert.Equal(t, 3, res.Fragments)
}

func TestPumpFlushesEachFragment(t *testing.T) {
	up := &fakeUpstream{body: func() io.Reader {
		return strings.NewReader(frame("a") + frame("b") + frame("c") + "data: [DONE]\n")
	}}
	r := newRelay(up)
	call, err := r.Prepare(types.ChatRequest{Message: "hi", OpenRouterAPIKey: "sk"})
	require.NoError(t, err)
	stream, err := r.Open(context.Background(), call)
	require.NoError(t, err)

	w := &recordingWriter{}
	_, err = stream.Pump(w)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, w.writes)
	assert.Equal(t, 3, w.flushes)
}

func TestPumpEOFWithoutDone(t *testing.T) {
	input := frame("partial") + `data: {"choices":[{"delta":{"content":" end"}}]}`

	out, res, err := relayBody(t, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "partial end", out)
	assert.Equal(t, monitoring.OutcomeEOF, res.Outcome)
}

func TestPumpInterrupted(t *testing.T) {
	body := io.MultiReader(
		strings.NewReader(frame("before")),
		iotest.ErrReader(errors.New("connection reset")),
	)

	out, res, err := relayBody(t, body)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamInterrupted)
	assert.Equal(t, "before", out)
	assert.Equal(t, monitoring.OutcomeInterrupted, res.Outcome)
}

func TestPumpClientGone(t *testing.T) {
	up := &fakeUpstream{body: func() io.Reader {
		return strings.NewReader(frame("a") + frame("b") + "data: [DONE]\n")
	}}
	r := newRelay(up)
	call, err := r.Prepare(types.ChatRequest{Message: "hi", OpenRouterAPIKey: "sk"})
	require.NoError(t, err)
	stream, err := r.Open(context.Background(), call)
	require.NoError(t, err)

	w := &recordingWriter{failAt: 2}
	_, err = stream.Pump(w)
	assert.ErrorIs(t, err, ErrStreamInterrupted)
	assert.Equal(t, "a", w.String())
	assert.Error(t, up.ctx.Err(), "upstream context must be cancelled")
}

func TestOpenUpstreamError(t *testing.T) {
	up := &fakeUpstream{err: &types.UpstreamError{Service: "openrouter", StatusCode: 401, Body: `{"error":"bad key"}`}}
	r := newRelay(up)
	call, err := r.Prepare(types.ChatRequest{Message: "hi", OpenRouterAPIKey: "sk"})
	require.NoError(t, err)

	_, err = r.Open(context.Background(), call)
	var upstream *types.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 401, upstream.StatusCode)
	assert.Error(t, up.ctx.Err())
}

func TestOpenAppliesStreamTimeout(t *testing.T) {
	up := &fakeUpstream{body: func() io.Reader { return strings.NewReader("") }}
	r := New(up, Defaults{StreamTimeout: time.Minute}, nil, nil)
	call, err := r.Prepare(types.ChatRequest{Message: "hi", OpenRouterAPIKey: "sk"})
	require.NoError(t, err)

	stream, err := r.Open(context.Background(), call)
	require.NoError(t, err)
	defer stream.Close()

	deadline, ok := up.ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
