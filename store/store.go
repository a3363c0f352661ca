// Package store persists trees, nodes, flashcards and reviews with gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/models"
)

// Store wraps the gorm connection.
type Store struct {
	*gorm.DB
}

// New returns a Store on db.
func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(what + " not found")
	}
	return fmt.Errorf("find %s: %w", what, err)
}

// UpsertUser creates the user row or refreshes its name and email.
func (s *Store) UpsertUser(ctx context.Context, user *models.User) error {
	err := s.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// FindUserByID returns the user with the given id.
func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}
