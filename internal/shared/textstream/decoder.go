// Package textstream decodes UTF-8 text that arrives in arbitrary byte chunks.
//
// A multi-byte rune split across two network reads is held back until the
// rest of it arrives instead of being replaced by U+FFFD.
package textstream

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder is a stateful incremental UTF-8 decoder. Not safe for concurrent use.
type Decoder struct {
	t       transform.Transformer
	pending []byte
}

// NewDecoder creates a decoder with no buffered bytes
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode appends chunk to the buffered input and returns every complete
// rune decoded so far. Invalid sequences decode to U+FFFD; an incomplete
// trailing sequence stays buffered for the next call.
func (d *Decoder) Decode(chunk []byte) string {
	d.pending = append(d.pending, chunk...)
	return d.run(false)
}

// Flush decodes whatever is still buffered, treating an incomplete
// trailing sequence as invalid, and resets the decoder.
func (d *Decoder) Flush() string {
	out := d.run(true)
	d.t.Reset()
	return out
}

// Buffered returns the number of bytes held back for the next call
func (d *Decoder) Buffered() int {
	return len(d.pending)
}

func (d *Decoder) run(atEOF bool) string {
	if len(d.pending) == 0 {
		return ""
	}

	src := d.pending
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	var out []byte

	for len(src) > 0 {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]

		if errors.Is(err, transform.ErrShortDst) {
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, 2*len(dst))
			}
			continue
		}
		// ErrShortSrc leaves an incomplete rune in src.
		break
	}

	d.pending = append(d.pending[:0], src...)
	return string(out)
}
