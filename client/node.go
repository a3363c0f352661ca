// Package client consumes the node API: it decodes streamed completions
// into renderable snapshots and keeps a laid-out view of a tree.
package client

import (
	"slices"

	"github.com/andrewpaige1/learntree-api/layout"
	"github.com/andrewpaige1/learntree-api/streamjson"
)

// StreamingNode is an immutable snapshot of a node being generated.
// Apply never mutates its receiver, so earlier snapshots stay valid.
type StreamingNode struct {
	Question  string
	Content   string
	Followups []string
	// Open is true until the stream has ended.
	Open bool
}

// Apply returns the snapshot after ev.
//
// A "content" event replaces Content with the text so far. An event inside
// "followups" appends a new entry when its index is the next one, and
// otherwise extends the existing entry with the event's delta.
func (n StreamingNode) Apply(ev streamjson.Event) StreamingNode {
	next, _ := n.apply(ev)
	return next
}

func (n StreamingNode) apply(ev streamjson.Event) (StreamingNode, bool) {
	switch key := ev.Key.(type) {
	case string:
		if key != "content" || len(ev.Path) != 1 {
			return n, false
		}
		content, _ := ev.Value.(string)
		if content == n.Content {
			return n, false
		}
		n.Content = content
		return n, true

	case int:
		if len(ev.Path) != 2 || ev.Path[0] != "followups" {
			return n, false
		}
		switch {
		case key == len(n.Followups):
			n.Followups = append(slices.Clip(n.Followups), ev.Delta)
		case key < len(n.Followups):
			if ev.Delta == "" {
				return n, false
			}
			followups := slices.Clone(n.Followups)
			followups[key] += ev.Delta
			n.Followups = followups
		default:
			return n, false
		}
		return n, true
	}
	return n, false
}

// State converts the snapshot for the layout view.
func (n StreamingNode) State() *layout.StreamingState {
	return &layout.StreamingState{
		Question:  n.Question,
		Content:   n.Content,
		Followups: slices.Clone(n.Followups),
	}
}
