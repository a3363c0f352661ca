package streamjson

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nodeDoc = `{"status":"success","name":"Gravity","content":"Mass \"attracts\" mass.\nSee: été 🍎","followups":["Why?","What is G?"],"depth":2.5e1,"ok":true,"none":null,"empty":[],"obj":{}}`

// collect feeds chunks and returns every event plus the Close error.
func collect(t *testing.T, chunks ...string) ([]Event, error) {
	t.Helper()
	var events []Event
	tok := New(func(ev Event) { events = append(events, ev) })
	for _, c := range chunks {
		if _, err := tok.Write([]byte(c)); err != nil {
			return events, err
		}
	}
	return events, tok.Close()
}

func final(events []Event) []Event {
	var out []Event
	for _, ev := range events {
		if !ev.Partial {
			out = append(out, ev)
		}
	}
	return out
}

func splitEvery(s string, n int) []string {
	var chunks []string
	for len(s) > n {
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return append(chunks, s)
}

func TestTokenizer_WholeDocument(t *testing.T) {
	events, err := collect(t, nodeDoc)
	require.NoError(t, err)

	want := []Event{
		{Path: []any{"status"}, Key: "status", Value: "success", Delta: "success"},
		{Path: []any{"name"}, Key: "name", Value: "Gravity", Delta: "Gravity"},
		{Path: []any{"content"}, Key: "content", Value: "Mass \"attracts\" mass.\nSee: été 🍎", Delta: "Mass \"attracts\" mass.\nSee: été 🍎"},
		{Path: []any{"followups", 0}, Key: 0, Value: "Why?", Delta: "Why?"},
		{Path: []any{"followups", 1}, Key: 1, Value: "What is G?", Delta: "What is G?"},
		{Path: []any{"depth"}, Key: "depth", Value: 25.0, Delta: "2.5e1"},
		{Path: []any{"ok"}, Key: "ok", Value: true, Delta: "true"},
		{Path: []any{"none"}, Key: "none", Value: nil, Delta: "null"},
	}
	assert.Equal(t, want, events)
}

func TestTokenizer_ChunkSplitsAgree(t *testing.T) {
	whole, err := collect(t, nodeDoc)
	require.NoError(t, err)

	for _, n := range []int{1, 2, 3, 5, 7, 16} {
		events, err := collect(t, splitEvery(nodeDoc, n)...)
		require.NoError(t, err, "chunk size %d", n)

		got := final(events)
		require.Len(t, got, len(whole), "chunk size %d", n)
		for i := range whole {
			assert.Equal(t, whole[i].Path, got[i].Path)
			assert.Equal(t, whole[i].Value, got[i].Value)
		}
	}
}

func TestTokenizer_DeltasRebuildValue(t *testing.T) {
	events, err := collect(t, splitEvery(nodeDoc, 3)...)
	require.NoError(t, err)

	var content strings.Builder
	partials := 0
	for _, ev := range events {
		if ev.Key != "content" {
			continue
		}
		content.WriteString(ev.Delta)
		assert.Equal(t, content.String(), ev.Value)
		if ev.Partial {
			partials++
		}
	}
	assert.Equal(t, "Mass \"attracts\" mass.\nSee: été 🍎", content.String())
	assert.Greater(t, partials, 1)
}

func TestTokenizer_PartialStringPerWrite(t *testing.T) {
	var events []Event
	tok := New(func(ev Event) { events = append(events, ev) })

	_, err := tok.Write([]byte(`{"content":"Hel`))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, Event{Path: []any{"content"}, Key: "content", Value: "Hel", Delta: "Hel", Partial: true}, events[0])

	_, err = tok.Write([]byte(`lo"}`))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, Event{Path: []any{"content"}, Key: "content", Value: "Hello", Delta: "lo"}, events[1])

	assert.NoError(t, tok.Close())
}

func TestTokenizer_SplitEscapes(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{"backslash at boundary", []string{`["a\`, `"b"]`}, `a"b`},
		{"unicode escape split", []string{`["x\u00`, `e9y"]`}, "xéy"},
		{"surrogate pair split", []string{`["\ud83d`, `\ude00"]`}, "😀"},
		{"lone high surrogate", []string{`["\ud83d`, `x"]`}, "�x"},
		{"lone low surrogate", []string{`["\ude00"]`}, "�"},
		{"utf8 split", []string{"[\"caf\xc3", "\xa9\"]"}, "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := collect(t, tt.chunks...)
			require.NoError(t, err)

			got := final(events)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Value)
			assert.Equal(t, []any{0}, got[0].Path)
		})
	}
}

func TestTokenizer_PartialNeverSplitsRune(t *testing.T) {
	var events []Event
	tok := New(func(ev Event) { events = append(events, ev) })

	_, err := tok.Write([]byte("[\"caf\xc3"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "caf", events[0].Value)

	_, err = tok.Write([]byte("\xa9 au lait"))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "café au lait", events[1].Value)
	assert.Equal(t, "é au lait", events[1].Delta)
}

func TestTokenizer_NestedPaths(t *testing.T) {
	events, err := collect(t, `{"a":[{"b":"x"},["y",1]]}`)
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, []any{"a", 0, "b"}, events[0].Path)
	assert.Equal(t, []any{"a", 1, 0}, events[1].Path)
	assert.Equal(t, []any{"a", 1, 1}, events[2].Path)
	assert.Equal(t, 1, events[2].Key)
}

func TestTokenizer_TopLevelScalars(t *testing.T) {
	events, err := collect(t, "  -12")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Key)
	assert.Equal(t, -12.0, events[0].Value)

	events, err = collect(t, `"solo"`)
	require.NoError(t, err)
	require.Len(t, final(events), 1)
	assert.Empty(t, final(events)[0].Path)
}

func TestTokenizer_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int64
	}{
		{"trailing comma in array", `[1,]`, 3},
		{"trailing comma in object", `{"a":1,}`, 7},
		{"missing colon", `{"a" 1}`, 5},
		{"bad literal", `[tru3]`, 4},
		{"bad escape", `["\x"]`, 3},
		{"bad number", `[01]`, 3},
		{"mismatched bracket", `{"a":1]`, 6},
		{"control character", "[\"a\nb\"]", 3},
		{"data after value", `{} {}`, 3},
		{"non-string key", `{1:2}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(t, tt.input)
			require.Error(t, err)

			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr), "got %v", err)
			assert.Equal(t, tt.offset, syntaxErr.Offset)
		})
	}
}

func TestTokenizer_IgnoreTrailing(t *testing.T) {
	var events []Event
	tok := New(func(ev Event) { events = append(events, ev) }, IgnoreTrailing())

	_, err := tok.Write([]byte(`{"name":"Gravity"`))
	require.NoError(t, err)
	assert.False(t, tok.Done())

	n, err := tok.Write([]byte("}\n```\nHope this helps! {\"name\":\"again\"}"))
	require.NoError(t, err)
	assert.Equal(t, 39, n)
	assert.True(t, tok.Done())
	require.NoError(t, tok.Close())

	want := []Event{{Path: []any{"name"}, Key: "name", Value: "Gravity", Delta: "Gravity"}}
	assert.Equal(t, want, final(events))
}

func TestTokenizer_TrailingNumberNeedsTerminator(t *testing.T) {
	var events []Event
	tok := New(func(ev Event) { events = append(events, ev) }, IgnoreTrailing())

	_, err := tok.Write([]byte(`12 garbage`))
	require.NoError(t, err)
	require.NoError(t, tok.Close())
	require.Len(t, events, 1)
	assert.Equal(t, 12.0, events[0].Value)
}

func TestTokenizer_ErrorIsSticky(t *testing.T) {
	tok := New(func(Event) {})

	_, err := tok.Write([]byte(`[}`))
	require.Error(t, err)

	_, again := tok.Write([]byte(`]`))
	assert.Equal(t, err, again)
	assert.Equal(t, err, tok.Close())
}

func TestTokenizer_UnexpectedEOF(t *testing.T) {
	for _, input := range []string{``, `{`, `{"content":"unterminated`, `[1,`, `[tr`, `{"a"`} {
		_, err := collect(t, input)
		assert.ErrorIs(t, err, ErrUnexpectedEOF, input)
	}
}
