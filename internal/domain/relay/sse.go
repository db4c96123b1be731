package relay

import (
	"strings"

	"github.com/GriffinCanCode/Reze/backend/internal/shared/textstream"
	"github.com/GriffinCanCode/Reze/backend/internal/shared/types"
	"github.com/bytedance/sonic"
)

const (
	dataPrefix = "data:"
	doneSignal = "[DONE]"
)

// Demuxer turns the upstream event stream into content fragments.
//
// Bytes are decoded incrementally and split into lines; a line or rune cut
// by a read boundary is completed by the next Feed. Only `data:` lines
// count. `[DONE]` ends the stream, a payload that is not JSON is skipped.
type Demuxer struct {
	decoder   *textstream.Decoder
	partial   strings.Builder
	done      bool
	malformed int
}

// NewDemuxer creates a demuxer in its initial state
func NewDemuxer() *Demuxer {
	return &Demuxer{decoder: textstream.NewDecoder()}
}

// Feed processes one raw read and calls emit for each content fragment in
// order. It returns true once the terminator is seen; later input is
// ignored. An error from emit stops processing and is returned.
func (d *Demuxer) Feed(chunk []byte, emit func(content string) error) (bool, error) {
	if d.done {
		return true, nil
	}

	text := d.decoder.Decode(chunk)
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			d.partial.WriteString(text)
			return false, nil
		}

		var line string
		if d.partial.Len() > 0 {
			d.partial.WriteString(text[:i])
			line = d.partial.String()
			d.partial.Reset()
		} else {
			line = text[:i]
		}
		text = text[i+1:]

		if err := d.handleLine(line, emit); err != nil || d.done {
			return d.done, err
		}
	}
}

// Close processes whatever is left once upstream reaches EOF, including a
// final line without a trailing newline.
func (d *Demuxer) Close(emit func(content string) error) (bool, error) {
	if d.done {
		return true, nil
	}

	d.partial.WriteString(d.decoder.Flush())
	line := d.partial.String()
	d.partial.Reset()

	if err := d.handleLine(line, emit); err != nil {
		return d.done, err
	}
	return d.done, nil
}

// Done reports whether the terminator has been seen
func (d *Demuxer) Done() bool { return d.done }

// Malformed returns the number of skipped data frames
func (d *Demuxer) Malformed() int { return d.malformed }

func (d *Demuxer) handleLine(line string, emit func(string) error) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, dataPrefix) {
		return nil
	}

	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == doneSignal {
		d.done = true
		return nil
	}

	content, ok := parseFrame(payload)
	if !ok {
		d.malformed++
		return nil
	}
	if content == "" {
		return nil
	}
	return emit(content)
}

// parseFrame extracts choices[0].delta.content from one JSON payload
func parseFrame(payload string) (string, bool) {
	if payload == "" {
		return "", false
	}
	var chunk types.CompletionChunk
	if err := sonic.UnmarshalString(payload, &chunk); err != nil {
		return "", false
	}
	return chunk.Content(), true
}
