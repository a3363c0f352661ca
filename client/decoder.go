package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/andrewpaige1/learntree-api/streamjson"
)

const readBufferSize = 4096

var (
	thinkOpen  = []byte("<think>")
	thinkClose = []byte("</think>")
)

// preamble drops what a model writes ahead of the document: whitespace, a
// leading <think> block, code fences and prose up to the first '{'.
type preamble struct {
	buf   []byte
	prose bool
	found bool
}

func (p *preamble) strip(chunk []byte) []byte {
	if p.found {
		return chunk
	}
	p.buf = append(p.buf, chunk...)
	rest := p.buf

	if !p.prose {
		rest = bytes.TrimLeftFunc(rest, unicode.IsSpace)
		switch {
		case bytes.HasPrefix(rest, thinkOpen):
			end := bytes.Index(rest, thinkClose)
			if end < 0 {
				return nil
			}
			rest = rest[end+len(thinkClose):]
		case bytes.HasPrefix(thinkOpen, rest):
			return nil
		}
		p.prose = true
	}

	start := bytes.IndexByte(rest, '{')
	if start < 0 {
		p.buf = p.buf[:0]
		return nil
	}
	p.found = true
	p.buf = nil
	return rest[start:]
}

// Decode reads a streamed node completion from r, calling onUpdate with a
// new snapshot whenever the visible content changes. Text before the first
// '{' and after the document closes is ignored, matching what the server
// accepts when it parses the completion. It returns the final snapshot with
// Open false, or the partial snapshot and an error when the stream fails or
// ends with an incomplete document.
func Decode(r io.Reader, question string, onUpdate func(StreamingNode)) (StreamingNode, error) {
	node := StreamingNode{Question: question, Open: true}
	changed := false

	tok := streamjson.New(func(ev streamjson.Event) {
		var ok bool
		if node, ok = node.apply(ev); ok {
			changed = true
		}
	}, streamjson.IgnoreTrailing())
	var pre preamble

	buf := make([]byte, readBufferSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := tok.Write(pre.strip(buf[:n])); err != nil {
				return node, fmt.Errorf("decode node stream: %w", err)
			}
			if changed && onUpdate != nil {
				onUpdate(node)
			}
			changed = false
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return node, fmt.Errorf("read node stream: %w", readErr)
		}
	}

	if err := tok.Close(); err != nil {
		return node, fmt.Errorf("decode node stream: %w", err)
	}

	node.Open = false
	if onUpdate != nil {
		onUpdate(node)
	}
	return node, nil
}
