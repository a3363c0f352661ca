// Package study implements the spaced-repetition schedule for flashcards.
package study

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/andrewpaige1/learntree-api/apperrors"
)

// Difficulty is the learner's rating of one review.
type Difficulty string

const (
	Hard Difficulty = "hard"
	Good Difficulty = "good"
	Easy Difficulty = "easy"
)

// MinEaseFactor is the floor applied after a hard review.
const MinEaseFactor = 1.3

// ParseDifficulty accepts "hard", "good" or "easy" in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Hard, Good, Easy:
		return d, nil
	}
	return "", apperrors.ValidationWithDetails("invalid difficulty",
		map[string]string{"difficulty": "must be one of: hard good easy"})
}

// DifficultyFromConfidence maps a 0-100 confidence score to a difficulty.
func DifficultyFromConfidence(confidence int) (Difficulty, error) {
	switch {
	case confidence < 0 || confidence > 100:
		return "", apperrors.ValidationWithDetails("invalid confidence",
			map[string]string{"confidence": fmt.Sprintf("must be between 0 and 100, got %d", confidence)})
	case confidence <= 33:
		return Hard, nil
	case confidence <= 66:
		return Good, nil
	default:
		return Easy, nil
	}
}

// Schedule is the review state of one card.
type Schedule struct {
	Interval   int
	EaseFactor float64
	NextReview time.Time
}

// Review returns the schedule after a review rated d at now.
func Review(s Schedule, d Difficulty, now time.Time) Schedule {
	interval, ease := s.Interval, s.EaseFactor

	switch d {
	case Hard:
		interval = max(1, int(math.Floor(float64(interval)*0.8)))
		ease = math.Max(MinEaseFactor, ease-0.15)
	case Good:
		interval = int(math.Floor(float64(interval) * ease))
	case Easy:
		interval = int(math.Floor(float64(interval) * ease * 1.3))
		ease += 0.1
	}

	return Schedule{
		Interval:   interval,
		EaseFactor: ease,
		NextReview: now.AddDate(0, 0, interval),
	}
}
