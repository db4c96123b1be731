package client

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/Reze/backend/internal/markdown"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/textstream"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/bytedance/sonic"
)

// Status is the assistant's request state
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSearching  Status = "searching"
	StatusGenerating Status = "generating"
	StatusError      Status = "error"
)

// FallbackPrefix opens the assistant block shown when a submission fails
const FallbackPrefix = "Sorry, something went wrong: "

const readBufferSize = 4096

// ErrBusy is returned when a submission overlaps one still in flight
var ErrBusy = errors.New("a request is already in progress")

// Block is one entry of the conversation. The in-flight assistant block is
// updated in place as text arrives.
type Block struct {
	Role string
	Text string
	HTML string
}

// View observes the conversation. Calls are made from the submitting
// goroutine, one at a time.
type View interface {
	StatusChanged(Status)
	BlockAdded(index int, b Block)
	BlockUpdated(index int, b Block)
}

// CredentialSource supplies the keys attached to each request. *Session
// satisfies it.
type CredentialSource interface {
	Credentials() types.Credentials
}

// Assistant submits one message at a time and streams the answer into the
// conversation.
type Assistant struct {
	api   *APIClient
	creds CredentialSource
	view  View

	busy atomic.Bool

	mu     sync.RWMutex
	status Status
	blocks []Block
}

// NewAssistant creates an idle assistant. view may be nil.
func NewAssistant(api *APIClient, creds CredentialSource, view View) *Assistant {
	return &Assistant{api: api, creds: creds, view: view, status: StatusIdle}
}

// stageError keeps the short message shown to the user while still
// unwrapping to the underlying cause.
type stageError struct {
	msg string
	err error
}

func (e *stageError) Error() string { return e.msg }
func (e *stageError) Unwrap() error { return e.err }

// Submit sends text, running the research step first when research is set.
// Blank text is ignored. Any failure ends the turn with a fallback assistant
// block and is also returned.
func (a *Assistant) Submit(ctx context.Context, text string, research bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !a.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer a.busy.Store(false)

	a.addBlock(Block{Role: types.RoleUser, Text: text, HTML: html.EscapeString(text)})

	if err := a.run(ctx, text, research); err != nil {
		a.setStatus(StatusError)
		msg := FallbackPrefix + err.Error()
		a.addBlock(Block{Role: types.RoleAssistant, Text: msg, HTML: markdown.SafeHTML(msg)})
		return err
	}
	a.setStatus(StatusIdle)
	return nil
}

func (a *Assistant) run(ctx context.Context, text string, research bool) error {
	var creds types.Credentials
	if a.creds != nil {
		creds = a.creds.Credentials()
	}

	researchCtx, err := sonic.Marshal(types.EmptyResearchContext(text))
	if err != nil {
		return err
	}

	if research {
		a.setStatus(StatusSearching)
		researchCtx, err = a.api.Research(ctx, types.ResearchRequest{
			Query:        text,
			GoogleAPIKey: creds.GoogleAPIKey,
			CseID:        creds.CseID,
		})
		if err != nil {
			return &stageError{msg: "Research failed", err: err}
		}
	}

	a.setStatus(StatusGenerating)
	body, err := a.api.Chat(ctx, types.ChatRequest{
		Message:          text,
		Context:          json.RawMessage(researchCtx),
		OpenRouterAPIKey: creds.OpenRouterAPIKey,
		OpenRouterModel:  creds.OpenRouterModel,
	})
	if err != nil {
		return &stageError{msg: "Chat API failed", err: err}
	}
	defer body.Close()

	return a.stream(body)
}

// stream renders the whole accumulated answer again after every read, even
// one that only delivered part of a multi-byte character.
func (a *Assistant) stream(body io.Reader) error {
	idx := a.addBlock(Block{Role: types.RoleAssistant})
	dec := textstream.NewDecoder()
	var acc strings.Builder
	buf := make([]byte, readBufferSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			acc.WriteString(dec.Decode(buf[:n]))
			a.updateBlock(idx, acc.String())
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}

	if tail := dec.Flush(); tail != "" {
		acc.WriteString(tail)
		a.updateBlock(idx, acc.String())
	}
	return nil
}

func (a *Assistant) setStatus(s Status) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
	if a.view != nil {
		a.view.StatusChanged(s)
	}
}

func (a *Assistant) addBlock(b Block) int {
	a.mu.Lock()
	a.blocks = append(a.blocks, b)
	idx := len(a.blocks) - 1
	a.mu.Unlock()
	if a.view != nil {
		a.view.BlockAdded(idx, b)
	}
	return idx
}

func (a *Assistant) updateBlock(idx int, text string) {
	a.mu.Lock()
	b := &a.blocks[idx]
	b.Text = text
	b.HTML = markdown.SafeHTML(text)
	cp := *b
	a.mu.Unlock()
	if a.view != nil {
		a.view.BlockUpdated(idx, cp)
	}
}

// Status returns the current request state
func (a *Assistant) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Blocks returns a copy of the conversation so far
func (a *Assistant) Blocks() []Block {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Block(nil), a.blocks...)
}
