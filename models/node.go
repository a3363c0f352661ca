package models

import (
	"time"

	"gorm.io/datatypes"
)

// Node is one question/answer unit of a tree. Nodes are append-only.
type Node struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	TreeID    uint                        `gorm:"not null;index;uniqueIndex:idx_nodes_tree_root,where:parent_id IS NULL" json:"treeId"`
	ParentID  *uint                       `gorm:"index" json:"parentId"`
	UserID    string                      `gorm:"not null;index" json:"userId"`
	Question  string                      `gorm:"not null;size:500" json:"question"`
	Name      string                      `gorm:"not null;size:200" json:"name"`
	Content   string                      `gorm:"type:text;not null" json:"content"`
	Followups datatypes.JSONSlice[string] `gorm:"not null" json:"followups"`
	CreatedAt time.Time                   `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`

	Tree       *Tree       `gorm:"foreignKey:TreeID" json:"-"`
	Flashcards []Flashcard `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE;" json:"flashcards,omitempty"`

	// Children is filled when a tree is returned in nested form.
	Children []Node `gorm:"-" json:"children,omitempty"`
}

// IsRoot reports whether n has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == nil
}

// CreateNodeParams carries the caller side of a node creation request.
type CreateNodeParams struct {
	Question string
	UserID   string
	TreeID   uint
	ParentID *uint
}
