package client

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/andrewpaige1/learntree-api/layout"
	"github.com/andrewpaige1/learntree-api/models"
)

// TreeView is the client-side state of one tree: its flat node list and
// the graph computed from it.
type TreeView struct {
	client *Client
	tree   models.Tree
	userID string

	mu    sync.Mutex
	nodes []models.Node
	graph layout.Graph
}

// NewTreeView returns a view of tree holding nodes.
func NewTreeView(c *Client, tree models.Tree, userID string, nodes []models.Node) *TreeView {
	v := &TreeView{
		client: c,
		tree:   tree,
		userID: userID,
		nodes:  slices.Clone(nodes),
	}
	v.graph = layout.Compute(v.nodes)
	return v
}

// Graph returns the current layout.
func (v *TreeView) Graph() layout.Graph {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.graph
}

// Nodes returns a copy of the flat node list.
func (v *TreeView) Nodes() []models.Node {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.nodes)
}

// Grow streams a new node under parentID. When the tree is empty the root
// is created instead, using the tree name as the question. onUpdate
// receives the layout with the streaming node placed in it. The persisted
// node is appended and the layout recomputed once streaming finishes.
func (v *TreeView) Grow(ctx context.Context, question string, parentID *uint, onUpdate func(layout.Graph)) (*models.Node, error) {
	v.mu.Lock()
	if len(v.nodes) == 0 {
		question = v.tree.Name
		parentID = nil
	}
	base := make([]layout.NodeView, len(v.nodes), len(v.nodes)+1)
	for i, n := range v.nodes {
		base[i] = layout.NodeView{Node: n}
	}
	v.mu.Unlock()

	started := time.Now()
	render := func(s StreamingNode) {
		if onUpdate == nil {
			return
		}
		views := append(base[:len(base):len(base)], layout.NodeView{
			Node:      models.Node{ParentID: parentID, CreatedAt: started},
			Streaming: s.State(),
		})
		onUpdate(layout.ComputeViews(views))
	}

	node, err := v.client.CreateNode(ctx, v.tree.Hash, CreateNodeRequest{
		Question: question,
		UserID:   v.userID,
		TreeID:   v.tree.ID,
		ParentID: parentID,
	}, render)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.nodes = append(v.nodes, *node)
	v.graph = layout.Compute(v.nodes)
	graph := v.graph
	v.mu.Unlock()

	if onUpdate != nil {
		onUpdate(graph)
	}
	return node, nil
}
