package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrewpaige1/learntree-api/models"
)

// CreateFlashcards inserts a whole batch in one transaction. Either every
// card is stored or none is.
func (s *Store) CreateFlashcards(ctx context.Context, cards []models.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}

	tx := s.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	for i := range cards {
		if err := tx.Create(&cards[i]).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("create flashcard %d: %w", i, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit flashcards: %w", err)
	}
	return nil
}

// FindFlashcardsByNode returns the cards of a node in insertion order.
func (s *Store) FindFlashcardsByNode(ctx context.Context, nodeID uint) ([]models.Flashcard, error) {
	cards := []models.Flashcard{}
	if err := s.WithContext(ctx).Where("node_id = ?", nodeID).Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("find flashcards: %w", err)
	}
	return cards, nil
}

// FindFlashcardByID returns one card.
func (s *Store) FindFlashcardByID(ctx context.Context, id uint) (*models.Flashcard, error) {
	var card models.Flashcard
	if err := s.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, notFound(err, "flashcard")
	}
	return &card, nil
}

// UpdateFlashcardSchedule writes the schedule fields of card using db,
// which may be a transaction.
func UpdateFlashcardSchedule(db *gorm.DB, card *models.Flashcard) error {
	err := db.Model(card).Updates(map[string]any{
		"interval":    card.Interval,
		"ease_factor": card.EaseFactor,
		"next_review": card.NextReview,
	}).Error
	if err != nil {
		return fmt.Errorf("update flashcard schedule: %w", err)
	}
	return nil
}

// UpdateFlashcardSchedule writes the schedule fields of card.
func (s *Store) UpdateFlashcardSchedule(ctx context.Context, card *models.Flashcard) error {
	return UpdateFlashcardSchedule(s.WithContext(ctx), card)
}

// DueFlashcards lists a user's cards due at now, optionally limited to
// some trees, soonest first.
func (s *Store) DueFlashcards(ctx context.Context, userID string, treeIDs []uint, now time.Time) ([]models.Flashcard, error) {
	db := s.WithContext(ctx).Model(&models.Flashcard{}).
		Where("flashcards.user_id = ? AND flashcards.next_review <= ?", userID, now)
	if len(treeIDs) > 0 {
		db = db.Joins("JOIN nodes ON nodes.id = flashcards.node_id").
			Where("nodes.tree_id IN ?", treeIDs)
	}

	cards := []models.Flashcard{}
	if err := db.Order("flashcards.next_review asc, flashcards.id asc").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("find due flashcards: %w", err)
	}
	return cards, nil
}

// CreateReview records a review using db, which may be a transaction.
func CreateReview(db *gorm.DB, review *models.Review) error {
	if err := db.Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// ReviewStats counts a user's reviews per difficulty.
func (s *Store) ReviewStats(ctx context.Context, userID string) (models.ReviewStats, error) {
	var rows []struct {
		Difficulty string
		Count      int64
	}
	err := s.WithContext(ctx).Model(&models.Review{}).
		Select("difficulty, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("difficulty").
		Scan(&rows).Error
	if err != nil {
		return models.ReviewStats{}, fmt.Errorf("review stats: %w", err)
	}

	var stats models.ReviewStats
	for _, r := range rows {
		switch r.Difficulty {
		case "hard":
			stats.Hard = r.Count
		case "good":
			stats.Good = r.Count
		case "easy":
			stats.Easy = r.Count
		}
	}
	return stats, nil
}
