package client

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/learntree-api/streamjson"
)

const completion = `{"status":"success","name":"Tides","content":"The moon pulls the oceans.","followups":["Why two tides a day?","What is a neap tide?"]}`

func TestStreamingNode_ContentReplaces(t *testing.T) {
	n := StreamingNode{Open: true}
	n = n.Apply(streamjson.Event{Path: []any{"content"}, Key: "content", Value: "The mo", Delta: "The mo", Partial: true})
	n = n.Apply(streamjson.Event{Path: []any{"content"}, Key: "content", Value: "The moon", Delta: "on"})

	assert.Equal(t, "The moon", n.Content)
}

func TestStreamingNode_FollowupsAppendThenConcatenate(t *testing.T) {
	n := StreamingNode{}
	n = n.Apply(streamjson.Event{Path: []any{"followups", 0}, Key: 0, Value: "Wh", Delta: "Wh", Partial: true})
	n = n.Apply(streamjson.Event{Path: []any{"followups", 0}, Key: 0, Value: "Why?", Delta: "y?"})
	n = n.Apply(streamjson.Event{Path: []any{"followups", 1}, Key: 1, Value: "How", Delta: "How"})

	assert.Equal(t, []string{"Why?", "How"}, n.Followups)
}

func TestStreamingNode_IgnoresOtherKeys(t *testing.T) {
	n := StreamingNode{Content: "kept"}
	n = n.Apply(streamjson.Event{Path: []any{"name"}, Key: "name", Value: "Tides"})
	n = n.Apply(streamjson.Event{Path: []any{"other", 0}, Key: 0, Value: "x", Delta: "x"})
	n = n.Apply(streamjson.Event{Path: []any{"followups", 3}, Key: 3, Value: "gap", Delta: "gap"})

	assert.Equal(t, StreamingNode{Content: "kept"}, n)
}

func TestStreamingNode_ApplyDoesNotMutate(t *testing.T) {
	first := StreamingNode{}.Apply(streamjson.Event{Path: []any{"followups", 0}, Key: 0, Value: "a", Delta: "a"})
	second := first.Apply(streamjson.Event{Path: []any{"followups", 0}, Key: 0, Value: "ab", Delta: "b"})
	third := second.Apply(streamjson.Event{Path: []any{"followups", 1}, Key: 1, Value: "c", Delta: "c"})

	assert.Equal(t, []string{"a"}, first.Followups)
	assert.Equal(t, []string{"ab"}, second.Followups)
	assert.Equal(t, []string{"ab", "c"}, third.Followups)

	third.Followups[0] = "changed"
	assert.Equal(t, "ab", second.Followups[0])
}

func TestDecode_ChunkedStream(t *testing.T) {
	var snapshots []StreamingNode
	final, err := Decode(iotest.OneByteReader(strings.NewReader(completion)), "tides?", func(n StreamingNode) {
		snapshots = append(snapshots, n)
	})
	require.NoError(t, err)

	assert.False(t, final.Open)
	assert.Equal(t, "tides?", final.Question)
	assert.Equal(t, "The moon pulls the oceans.", final.Content)
	assert.Equal(t, []string{"Why two tides a day?", "What is a neap tide?"}, final.Followups)

	require.Greater(t, len(snapshots), 10)
	for i := 1; i < len(snapshots); i++ {
		assert.GreaterOrEqual(t, len(snapshots[i].Content), len(snapshots[i-1].Content))
	}
	for _, s := range snapshots[:len(snapshots)-1] {
		assert.True(t, s.Open)
	}
	assert.Equal(t, final, snapshots[len(snapshots)-1])
}

func TestDecode_WholeBody(t *testing.T) {
	calls := 0
	final, err := Decode(strings.NewReader(completion), "", func(StreamingNode) { calls++ })
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Len(t, final.Followups, 2)
}

func TestDecode_WrappedCompletion(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"code fence", "```json\n" + completion + "\n```"},
		{"prose around", "Sure! Here is the node:\n" + completion + "\nLet me know if you need more."},
		{"think block", "<think>maybe {\"content\":\"draft\"} first</think>\n" + completion},
		{"leading whitespace", "\n\n  " + completion + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, r := range []io.Reader{strings.NewReader(tt.body), iotest.OneByteReader(strings.NewReader(tt.body))} {
				final, err := Decode(r, "q", nil)
				require.NoError(t, err)

				assert.False(t, final.Open)
				assert.Equal(t, "The moon pulls the oceans.", final.Content)
				assert.Equal(t, []string{"Why two tides a day?", "What is a neap tide?"}, final.Followups)
			}
		})
	}
}

func TestDecode_NoDocument(t *testing.T) {
	partial, err := Decode(strings.NewReader("I cannot help with that."), "q", nil)
	assert.ErrorIs(t, err, streamjson.ErrUnexpectedEOF)
	assert.True(t, partial.Open)
	assert.Empty(t, partial.Content)
}

func TestDecode_IncompleteDocument(t *testing.T) {
	partial, err := Decode(strings.NewReader(completion[:60]), "q", nil)
	assert.ErrorIs(t, err, streamjson.ErrUnexpectedEOF)
	assert.True(t, partial.Open)
	assert.NotEmpty(t, partial.Content)
}

func TestDecode_ReadError(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader(completion[:30]), iotest.ErrReader(boom))

	_, err := Decode(r, "q", nil)
	assert.ErrorIs(t, err, boom)
}

func TestDecode_SyntaxError(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"content":"x"]`), "q", nil)

	var syntaxErr *streamjson.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}
