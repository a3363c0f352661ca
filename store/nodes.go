package store

import (
	"context"
	"fmt"

	"github.com/andrewpaige1/learntree-api/models"
)

// CreateNode inserts node. Followups are stored as an empty list when nil.
func (s *Store) CreateNode(ctx context.Context, node *models.Node) error {
	if node.Followups == nil {
		node.Followups = []string{}
	}
	if err := s.WithContext(ctx).Create(node).Error; err != nil {
		return fmt.Errorf("create node: %w", err)
	}
	return nil
}

// FindNodeByID returns one node with its flashcards.
func (s *Store) FindNodeByID(ctx context.Context, id uint) (*models.Node, error) {
	var node models.Node
	if err := s.WithContext(ctx).Preload("Flashcards").First(&node, id).Error; err != nil {
		return nil, notFound(err, "node")
	}
	return &node, nil
}

// FindNodesByTree returns the flat node list of a tree in creation order.
func (s *Store) FindNodesByTree(ctx context.Context, treeID uint) ([]models.Node, error) {
	nodes := []models.Node{}
	if err := s.WithContext(ctx).
		Where("tree_id = ?", treeID).
		Order("created_at asc, id asc").
		Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("find nodes: %w", err)
	}
	return nodes, nil
}

// TreeHasRoot reports whether the tree already holds a node without a parent.
func (s *Store) TreeHasRoot(ctx context.Context, treeID uint) (bool, error) {
	var count int64
	if err := s.WithContext(ctx).
		Model(&models.Node{}).
		Where("tree_id = ? AND parent_id IS NULL", treeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count root nodes: %w", err)
	}
	return count > 0, nil
}

// FindNodesForUser returns the nodes of the user's trees with their
// flashcards, in creation order. A non-empty treeHash limits the result to
// that tree.
func (s *Store) FindNodesForUser(ctx context.Context, userID, treeHash string) ([]models.Node, error) {
	db := s.WithContext(ctx).
		Joins("JOIN trees ON trees.id = nodes.tree_id").
		Where("trees.user_id = ?", userID)
	if treeHash != "" {
		db = db.Where("trees.hash = ?", treeHash)
	}

	nodes := []models.Node{}
	if err := db.Preload("Flashcards").
		Order("nodes.created_at asc, nodes.id asc").
		Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("find nodes for user: %w", err)
	}
	return nodes, nil
}

// FindLatestNodeForTree returns the most recently created node of a tree.
func (s *Store) FindLatestNodeForTree(ctx context.Context, treeHash string) (*models.Node, error) {
	var node models.Node
	if err := s.WithContext(ctx).
		Joins("JOIN trees ON trees.id = nodes.tree_id").
		Where("trees.hash = ?", treeHash).
		Preload("Flashcards").
		Order("nodes.created_at desc, nodes.id desc").
		First(&node).Error; err != nil {
		return nil, notFound(err, "node")
	}
	return &node, nil
}
