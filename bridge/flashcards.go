package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/llm"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/structured"
)

// FlashcardStore persists a flashcard batch atomically.
type FlashcardStore interface {
	CreateFlashcards(ctx context.Context, cards []models.Flashcard) error
}

// FlashcardGenerator derives study cards from a persisted node.
type FlashcardGenerator struct {
	client    llm.ChatClient
	store     FlashcardStore
	model     string
	maxTokens int
	logger    *zap.Logger
	now       func() time.Time
}

// NewFlashcardGenerator returns a generator using model for completions.
func NewFlashcardGenerator(client llm.ChatClient, store FlashcardStore, model string, maxTokens int, logger *zap.Logger) *FlashcardGenerator {
	return &FlashcardGenerator{
		client:    client,
		store:     store,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.Named("flashcards"),
		now:       time.Now,
	}
}

// Generate asks for 4 to 8 cards about node and stores them in one batch.
// New cards are due immediately.
func (g *FlashcardGenerator) Generate(ctx context.Context, node *models.Node) ([]models.Flashcard, error) {
	if g.client == nil {
		return nil, apperrors.FlashcardGeneration("LLM client not configured", nil)
	}

	raw, err := g.client.Complete(ctx, llm.ChatRequest{
		Model: g.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: llm.FlashcardSystemPrompt},
			{Role: llm.RoleUser, Content: llm.FlashcardUserPrompt(node.Name, node.Content)},
		},
		Temperature: 0.7,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return nil, apperrors.FlashcardGeneration("flashcard completion failed", err)
	}

	inputs, err := structured.ParseFlashcards(raw)
	if err != nil {
		return nil, apperrors.FlashcardGeneration("flashcard completion rejected", err)
	}

	now := g.now()
	cards := make([]models.Flashcard, len(inputs))
	for i, in := range inputs {
		cards[i] = models.Flashcard{
			NodeID:     node.ID,
			UserID:     node.UserID,
			Name:       in.Keyword,
			Content:    in.Definition,
			Interval:   models.DefaultInterval,
			EaseFactor: models.DefaultEaseFactor,
			NextReview: now,
		}
	}

	if err := g.store.CreateFlashcards(ctx, cards); err != nil {
		return nil, apperrors.FlashcardGeneration("failed to store flashcards", err)
	}

	g.logger.Info("Flashcards created",
		zap.Uint("node_id", node.ID),
		zap.Int("count", len(cards)))
	return cards, nil
}
