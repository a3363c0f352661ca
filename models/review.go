package models

import (
	"time"
)

// Review records one study review of a flashcard.
type Review struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FlashcardID    uint      `gorm:"not null;index" json:"flashcardId"`
	Flashcard      Flashcard `gorm:"foreignKey:FlashcardID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID         string    `gorm:"not null;index" json:"userId"`
	Difficulty     string    `gorm:"not null;size:10" json:"difficulty"`
	IntervalBefore int       `gorm:"not null" json:"intervalBefore"`
	IntervalAfter  int       `gorm:"not null" json:"intervalAfter"`
	EaseBefore     float64   `gorm:"not null" json:"easeBefore"`
	EaseAfter      float64   `gorm:"not null" json:"easeAfter"`
	ReviewedAt     time.Time `gorm:"autoCreateTime" json:"reviewedAt"`
}

// ReviewStats counts reviews per difficulty.
type ReviewStats struct {
	Hard int64 `json:"hard"`
	Good int64 `json:"good"`
	Easy int64 `json:"easy"`
}

// All lists every model managed by AutoMigrate.
func All() []any {
	return []any{&User{}, &Tree{}, &Node{}, &Flashcard{}, &Review{}}
}
