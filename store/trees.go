package store

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/andrewpaige1/learntree-api/models"
)

const hashAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// HashLength is the length of a tree's public hash.
const HashLength = 12

// CreateTree assigns a public hash when tree has none and inserts it.
func (s *Store) CreateTree(ctx context.Context, tree *models.Tree) error {
	if tree.Hash == "" {
		hash, err := gonanoid.Generate(hashAlphabet, HashLength)
		if err != nil {
			return fmt.Errorf("generate tree hash: %w", err)
		}
		tree.Hash = hash
	}
	if err := s.WithContext(ctx).Create(tree).Error; err != nil {
		return fmt.Errorf("create tree: %w", err)
	}
	return nil
}

// FindTreeByID returns the tree row without its nodes.
func (s *Store) FindTreeByID(ctx context.Context, id uint) (*models.Tree, error) {
	var tree models.Tree
	if err := s.WithContext(ctx).First(&tree, id).Error; err != nil {
		return nil, notFound(err, "tree")
	}
	return &tree, nil
}

// FindTreeByHash returns the tree with its nodes nested under their
// parents. Tree.Nodes holds the root when one exists.
func (s *Store) FindTreeByHash(ctx context.Context, hash string) (*models.Tree, error) {
	var tree models.Tree
	if err := s.WithContext(ctx).Where("hash = ?", hash).First(&tree).Error; err != nil {
		return nil, notFound(err, "tree")
	}

	nodes, err := s.FindNodesByTree(ctx, tree.ID)
	if err != nil {
		return nil, err
	}
	tree.Nodes = Nest(nodes)
	return &tree, nil
}

// Nest arranges a flat node list into parent/child form and returns the
// roots in creation order.
func Nest(nodes []models.Node) []models.Node {
	children := make(map[uint][]int, len(nodes))
	var roots []int
	for i, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, i)
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], i)
	}

	visited := make(map[uint]bool, len(nodes))
	var build func(i int) models.Node
	build = func(i int) models.Node {
		n := nodes[i]
		visited[n.ID] = true
		n.Children = nil
		for _, c := range children[n.ID] {
			if visited[nodes[c].ID] {
				continue
			}
			n.Children = append(n.Children, build(c))
		}
		return n
	}

	out := make([]models.Node, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}

// ListTreesForUser pages through a user's trees, newest first, and
// returns the total count.
func (s *Store) ListTreesForUser(ctx context.Context, userID string, limit, offset int) ([]models.Tree, int64, error) {
	db := s.WithContext(ctx).Model(&models.Tree{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count trees: %w", err)
	}

	var trees []models.Tree
	if err := db.Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&trees).Error; err != nil {
		return nil, 0, fmt.Errorf("list trees: %w", err)
	}
	return trees, total, nil
}

// TreeSummaries returns every tree of a user with its node count.
func (s *Store) TreeSummaries(ctx context.Context, userID string) ([]models.TreeSummary, error) {
	summaries := []models.TreeSummary{}
	err := s.WithContext(ctx).
		Model(&models.Tree{}).
		Select("trees.id, trees.name, COUNT(nodes.id) AS node_count").
		Joins("LEFT JOIN nodes ON nodes.tree_id = trees.id").
		Where("trees.user_id = ?", userID).
		Group("trees.id, trees.name").
		Order("trees.id").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("summarize trees: %w", err)
	}
	return summaries, nil
}
