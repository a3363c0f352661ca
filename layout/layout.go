// Package layout positions the nodes of a tree for display.
//
// Leaves are spread left to right in traversal order; each internal node
// sits halfway between its first and last child; depth grows upward.
package layout

import (
	"slices"
	"strconv"

	"github.com/andrewpaige1/learntree-api/models"
)

// Spacing between neighbouring slots and levels.
const (
	HorizontalSpacing = 100
	VerticalSpacing   = 100
)

// StreamingID identifies the node that is still being generated.
const StreamingID = "streaming"

// Position is a point in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StreamingState is the partial content of a node that has not been
// persisted yet.
type StreamingState struct {
	Question  string   `json:"question"`
	Content   string   `json:"content"`
	Followups []string `json:"followups"`
}

// NodeView is either a persisted node (Streaming nil) or the node being
// streamed, which only has ParentID and CreatedAt set on Node.
type NodeView struct {
	Node      models.Node     `json:"node"`
	Streaming *StreamingState `json:"streaming,omitempty"`
}

// ID returns the identifier used for positioned nodes and edges.
func (v NodeView) ID() string {
	if v.Streaming != nil {
		return StreamingID
	}
	return strconv.FormatUint(uint64(v.Node.ID), 10)
}

// PositionedNode is a node with its computed position.
type PositionedNode struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Data     NodeView `json:"data"`
}

// Edge links a parent to one of its children.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the positioned form of a tree.
type Graph struct {
	Nodes []PositionedNode `json:"nodes"`
	Edges []Edge           `json:"edges"`
}

// Compute lays out persisted nodes.
func Compute(nodes []models.Node) Graph {
	views := make([]NodeView, len(nodes))
	for i, n := range nodes {
		views[i] = NodeView{Node: n}
	}
	return ComputeViews(views)
}

// ComputeViews lays out the tree rooted at the first view without a parent.
// Nodes are emitted in post-order and edges in the order they are walked.
// Views not reachable from the root are left out. The result depends only
// on the input.
func ComputeViews(views []NodeView) Graph {
	graph := Graph{Nodes: []PositionedNode{}, Edges: []Edge{}}

	root := slices.IndexFunc(views, func(v NodeView) bool { return v.Node.ParentID == nil })
	if root < 0 {
		return graph
	}

	children := make(map[uint][]int)
	for i, v := range views {
		if i == root || v.Node.ParentID == nil {
			continue
		}
		children[*v.Node.ParentID] = append(children[*v.Node.ParentID], i)
	}
	for _, list := range children {
		slices.SortStableFunc(list, func(a, b int) int {
			return views[a].Node.CreatedAt.Compare(views[b].Node.CreatedAt)
		})
	}

	visited := make([]bool, len(views))
	slot := 0

	var walk func(i, depth int) float64
	walk = func(i, depth int) float64 {
		visited[i] = true
		v := views[i]
		id := v.ID()

		var kids []int
		if v.Streaming == nil {
			kids = children[v.Node.ID]
		}

		var first, last float64
		placed := 0
		for _, c := range kids {
			if visited[c] {
				continue
			}
			childID := views[c].ID()
			graph.Edges = append(graph.Edges, Edge{ID: id + "-" + childID, Source: id, Target: childID})

			x := walk(c, depth+1)
			if placed == 0 {
				first = x
			}
			last = x
			placed++
		}

		var x float64
		if placed == 0 {
			x = float64(slot * HorizontalSpacing)
			slot++
		} else {
			x = (first + last) / 2
		}

		graph.Nodes = append(graph.Nodes, PositionedNode{
			ID:       id,
			Position: Position{X: x, Y: float64(-depth * VerticalSpacing)},
			Data:     v,
		})
		return x
	}
	walk(root, 0)

	return graph
}
