package study

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/store"
)

// Scheduler applies reviews to stored cards.
type Scheduler struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler returns a Scheduler backed by s.
func NewScheduler(s *store.Store, logger *zap.Logger) *Scheduler {
	return &Scheduler{store: s, logger: logger.Named("study"), now: time.Now}
}

// ReviewCard rates card cardID for userID and persists the new schedule
// together with a review record.
func (s *Scheduler) ReviewCard(ctx context.Context, cardID uint, userID string, d Difficulty) (*models.Flashcard, error) {
	card, err := s.store.FindFlashcardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, apperrors.Forbidden("flashcard belongs to another user")
	}

	before := Schedule{Interval: card.Interval, EaseFactor: card.EaseFactor, NextReview: card.NextReview}
	after := Review(before, d, s.now())

	card.Interval = after.Interval
	card.EaseFactor = after.EaseFactor
	card.NextReview = after.NextReview

	err = s.store.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.UpdateFlashcardSchedule(tx, card); err != nil {
			return err
		}
		return store.CreateReview(tx, &models.Review{
			FlashcardID:    card.ID,
			UserID:         userID,
			Difficulty:     string(d),
			IntervalBefore: before.Interval,
			IntervalAfter:  after.Interval,
			EaseBefore:     before.EaseFactor,
			EaseAfter:      after.EaseFactor,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("review flashcard %d: %w", cardID, err)
	}

	s.logger.Debug("Flashcard reviewed",
		zap.Uint("flashcard_id", card.ID),
		zap.String("difficulty", string(d)),
		zap.Int("interval", card.Interval),
		zap.Time("next_review", card.NextReview))

	return card, nil
}

// Due lists the user's cards due now, optionally limited to treeIDs.
func (s *Scheduler) Due(ctx context.Context, userID string, treeIDs []uint) ([]models.Flashcard, error) {
	return s.store.DueFlashcards(ctx, userID, treeIDs, s.now())
}

// Stats counts the user's reviews per difficulty.
func (s *Scheduler) Stats(ctx context.Context, userID string) (models.ReviewStats, error) {
	return s.store.ReviewStats(ctx, userID)
}
