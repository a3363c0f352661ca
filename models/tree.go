package models

import "time"

// Tree is one learning session: a rooted collection of nodes owned by a single user.
type Tree struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Hash      string    `gorm:"not null;size:32;uniqueIndex" json:"hash"`
	Name      string    `gorm:"not null;size:100" json:"name"`
	UserID    string    `gorm:"not null;index" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Nodes []Node `gorm:"foreignKey:TreeID;constraint:OnDelete:CASCADE;" json:"nodes,omitempty"`
}

// TreeSummary is a tree with the number of nodes it holds.
type TreeSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	NodeCount int64  `json:"nodeCount"`
}
