// Package streamjson is a push-based JSON tokenizer that reports string
// values while they are still arriving.
//
// Bytes are fed with Write as they come off the wire. Each string value is
// reported once per Write while it is incomplete (Partial set, Value holding
// the text so far, Delta the text added since the previous report) and once
// more when its closing quote arrives. Numbers, booleans and null are
// reported when complete. Containers are not reported.
package streamjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrUnexpectedEOF is returned by Close when the document is incomplete.
var ErrUnexpectedEOF = errors.New("streamjson: unexpected end of input")

// Event describes one value, or a prefix of one string value.
type Event struct {
	// Path locates the value: object keys are strings, array indices ints.
	Path []any
	// Key is the last element of Path, or nil for the top-level value.
	Key any
	// Value is a string (possibly partial), float64, bool or nil.
	Value any
	// Delta is the text added since the previous event for the same value.
	// For non-string values it is the literal as written.
	Delta   string
	Partial bool
}

// SyntaxError reports malformed input.
type SyntaxError struct {
	Offset int64
	msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("streamjson: %s at offset %d", e.msg, e.Offset)
}

type frameKind uint8

const (
	objectFrame frameKind = iota
	arrayFrame
)

type frame struct {
	kind  frameKind
	key   string
	index int
}

type state uint8

const (
	stateValue     state = iota // a value must follow
	stateFirstElem              // after '[': a value or ']'
	stateFirstKey               // after '{': a key or '}'
	stateKey                    // after ',' inside an object
	stateColon
	stateNext // after a value: ',' or a closing bracket
	stateString
	stateNumber
	stateLiteral
)

type escape uint8

const (
	escNone escape = iota
	escBackslash
	escUnicode
)

// Tokenizer consumes a single JSON document incrementally. It is not safe
// for concurrent use.
type Tokenizer struct {
	handler        func(Event)
	ignoreTrailing bool

	stack  []frame
	state  state
	offset int64
	err    error

	inKey   bool
	str     []byte
	emitted int
	esc     escape
	unit    rune
	units   int
	high    rune

	scalar  []byte
	literal string
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// IgnoreTrailing makes the Tokenizer discard any input that follows a
// complete top-level value instead of reporting a syntax error.
func IgnoreTrailing() Option {
	return func(t *Tokenizer) { t.ignoreTrailing = true }
}

// New returns a Tokenizer that calls handler synchronously for every event.
func New(handler func(Event), opts ...Option) *Tokenizer {
	t := &Tokenizer{handler: handler}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Done reports whether a complete top-level value has been read.
func (t *Tokenizer) Done() bool {
	return t.state == stateNext && len(t.stack) == 0
}

// Write feeds p to the tokenizer. It implements io.Writer; after the first
// error every call returns that error.
func (t *Tokenizer) Write(p []byte) (int, error) {
	if t.err != nil {
		return 0, t.err
	}
	for i := 0; i < len(p); {
		if t.ignoreTrailing && t.Done() {
			t.offset += int64(len(p) - i)
			break
		}
		consumed, err := t.step(p[i])
		if err != nil {
			t.err = err
			return i, err
		}
		if consumed {
			i++
			t.offset++
		}
	}
	t.flushPartial()
	return len(p), nil
}

// Close marks the end of input. It reports ErrUnexpectedEOF when the
// document is incomplete.
func (t *Tokenizer) Close() error {
	if t.err != nil {
		return t.err
	}
	if t.state == stateNumber {
		if err := t.finishNumber(); err != nil {
			t.err = err
			return err
		}
	}
	if !t.Done() {
		t.err = ErrUnexpectedEOF
		return t.err
	}
	return nil
}

// step handles one byte. It returns false when the byte ended a number and
// has to be handled again in the following state.
func (t *Tokenizer) step(c byte) (bool, error) {
	switch t.state {
	case stateString:
		return true, t.stringByte(c)
	case stateNumber:
		if isNumberByte(c) {
			t.scalar = append(t.scalar, c)
			return true, nil
		}
		return false, t.finishNumber()
	case stateLiteral:
		return true, t.literalByte(c)
	}

	if isSpace(c) {
		return true, nil
	}

	switch t.state {
	case stateFirstElem:
		if c == ']' {
			t.closeContainer()
			return true, nil
		}
		return true, t.beginValue(c)
	case stateValue:
		return true, t.beginValue(c)
	case stateFirstKey, stateKey:
		if c == '"' {
			t.startString(true)
			return true, nil
		}
		if c == '}' && t.state == stateFirstKey {
			t.closeContainer()
			return true, nil
		}
		return true, t.syntaxError("expected object key")
	case stateColon:
		if c != ':' {
			return true, t.syntaxError("expected ':' after object key")
		}
		t.state = stateValue
		return true, nil
	case stateNext:
		return true, t.afterValue(c)
	}
	return true, t.syntaxError("invalid tokenizer state")
}

func (t *Tokenizer) beginValue(c byte) error {
	switch {
	case c == '{':
		t.stack = append(t.stack, frame{kind: objectFrame})
		t.state = stateFirstKey
	case c == '[':
		t.stack = append(t.stack, frame{kind: arrayFrame})
		t.state = stateFirstElem
	case c == '"':
		t.startString(false)
	case c == '-' || (c >= '0' && c <= '9'):
		t.scalar = append(t.scalar[:0], c)
		t.state = stateNumber
	case c == 't':
		t.startLiteral("true")
	case c == 'f':
		t.startLiteral("false")
	case c == 'n':
		t.startLiteral("null")
	default:
		return t.syntaxError(fmt.Sprintf("invalid character %q looking for beginning of value", c))
	}
	return nil
}

func (t *Tokenizer) afterValue(c byte) error {
	if len(t.stack) == 0 {
		return t.syntaxError(fmt.Sprintf("invalid character %q after top-level value", c))
	}
	top := &t.stack[len(t.stack)-1]
	switch {
	case c == ',' && top.kind == arrayFrame:
		top.index++
		t.state = stateValue
	case c == ',':
		t.state = stateKey
	case c == ']' && top.kind == arrayFrame, c == '}' && top.kind == objectFrame:
		t.closeContainer()
	default:
		return t.syntaxError(fmt.Sprintf("invalid character %q after value", c))
	}
	return nil
}

func (t *Tokenizer) closeContainer() {
	t.stack = t.stack[:len(t.stack)-1]
	t.state = stateNext
}

func (t *Tokenizer) startString(key bool) {
	t.inKey = key
	t.str = t.str[:0]
	t.emitted = 0
	t.esc = escNone
	t.high = 0
	t.state = stateString
}

func (t *Tokenizer) stringByte(c byte) error {
	switch t.esc {
	case escBackslash:
		t.esc = escNone
		switch c {
		case '"', '\\', '/':
			t.appendRune(rune(c))
		case 'b':
			t.appendRune('\b')
		case 'f':
			t.appendRune('\f')
		case 'n':
			t.appendRune('\n')
		case 'r':
			t.appendRune('\r')
		case 't':
			t.appendRune('\t')
		case 'u':
			t.esc = escUnicode
			t.unit = 0
			t.units = 0
		default:
			return t.syntaxError(fmt.Sprintf("invalid escape character %q", c))
		}
		return nil
	case escUnicode:
		v, ok := unhex(c)
		if !ok {
			return t.syntaxError(fmt.Sprintf("invalid character %q in \\u escape", c))
		}
		t.unit = t.unit<<4 | v
		t.units++
		if t.units == 4 {
			t.esc = escNone
			t.appendUnit(t.unit)
		}
		return nil
	}

	switch {
	case c == '"':
		t.finishString()
	case c == '\\':
		t.esc = escBackslash
	case c < 0x20:
		return t.syntaxError("control character in string literal")
	default:
		t.flushHigh()
		t.str = append(t.str, c)
	}
	return nil
}

// appendUnit adds one UTF-16 code unit from a \u escape, pairing surrogates.
// Unpaired surrogates become U+FFFD.
func (t *Tokenizer) appendUnit(r rune) {
	if !utf16.IsSurrogate(r) {
		t.appendRune(r)
		return
	}
	if r < 0xDC00 {
		t.flushHigh()
		t.high = r
		return
	}
	if t.high != 0 {
		t.str = utf8.AppendRune(t.str, utf16.DecodeRune(t.high, r))
		t.high = 0
		return
	}
	t.str = utf8.AppendRune(t.str, utf8.RuneError)
}

func (t *Tokenizer) appendRune(r rune) {
	t.flushHigh()
	t.str = utf8.AppendRune(t.str, r)
}

func (t *Tokenizer) flushHigh() {
	if t.high != 0 {
		t.str = utf8.AppendRune(t.str, utf8.RuneError)
		t.high = 0
	}
}

func (t *Tokenizer) finishString() {
	t.flushHigh()
	if t.inKey {
		t.stack[len(t.stack)-1].key = string(t.str)
		t.state = stateColon
		return
	}
	t.state = stateNext
	t.emit(string(t.str), string(t.str[t.emitted:]), false)
}

// flushPartial reports the unreported, complete-rune part of the string
// value being read.
func (t *Tokenizer) flushPartial() {
	if t.state != stateString || t.inKey {
		return
	}
	end := completePrefix(t.str)
	if end <= t.emitted {
		return
	}
	delta := string(t.str[t.emitted:end])
	t.emitted = end
	t.emit(string(t.str[:end]), delta, true)
}

func (t *Tokenizer) finishNumber() error {
	if !json.Valid(t.scalar) {
		return t.syntaxError(fmt.Sprintf("invalid number literal %q", t.scalar))
	}
	f, err := strconv.ParseFloat(string(t.scalar), 64)
	if err != nil {
		return t.syntaxError(fmt.Sprintf("number %q out of range", t.scalar))
	}
	t.state = stateNext
	t.emit(f, string(t.scalar), false)
	return nil
}

func (t *Tokenizer) startLiteral(lit string) {
	t.literal = lit
	t.scalar = append(t.scalar[:0], lit[0])
	t.state = stateLiteral
}

func (t *Tokenizer) literalByte(c byte) error {
	n := len(t.scalar)
	if t.literal[n] != c {
		return t.syntaxError(fmt.Sprintf("invalid character %q in literal %s", c, t.literal))
	}
	t.scalar = append(t.scalar, c)
	if len(t.scalar) < len(t.literal) {
		return nil
	}

	t.state = stateNext
	switch t.literal {
	case "true":
		t.emit(true, t.literal, false)
	case "false":
		t.emit(false, t.literal, false)
	default:
		t.emit(nil, t.literal, false)
	}
	return nil
}

func (t *Tokenizer) emit(value any, delta string, partial bool) {
	path := make([]any, len(t.stack))
	for i, f := range t.stack {
		if f.kind == arrayFrame {
			path[i] = f.index
		} else {
			path[i] = f.key
		}
	}

	var key any
	if len(path) > 0 {
		key = path[len(path)-1]
	}
	t.handler(Event{Path: path, Key: key, Value: value, Delta: delta, Partial: partial})
}

func (t *Tokenizer) syntaxError(msg string) error {
	return &SyntaxError{Offset: t.offset, msg: msg}
}

// completePrefix returns the length of the longest prefix of b that does
// not end inside a multi-byte UTF-8 sequence.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}

func unhex(c byte) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0'), true
	case c >= 'a' && c <= 'f':
		return rune(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return rune(c-'A') + 10, true
	}
	return 0, false
}
