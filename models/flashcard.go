package models

import (
	"time"
)

// Default spaced-repetition parameters for a new card.
const (
	DefaultInterval   = 1
	DefaultEaseFactor = 2.5
)

// Flashcard is a keyword/definition pair derived from a Node.
// Only the schedule fields (Interval, EaseFactor, NextReview) change after creation.
type Flashcard struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	NodeID uint   `gorm:"not null;index" json:"nodeId"`
	UserID string `gorm:"not null;index" json:"userId"`
	// Name is the keyword.
	Name string `gorm:"not null;size:200" json:"name"`
	// Content is the definition.
	Content string `gorm:"type:text;not null" json:"content"`

	Interval   int       `gorm:"not null;default:1" json:"interval"`
	EaseFactor float64   `gorm:"not null;default:2.5" json:"easeFactor"`
	NextReview time.Time `gorm:"not null;index" json:"nextReview"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
