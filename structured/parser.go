// Package structured validates finished LLM completions against the node
// and flashcard schemas.
package structured

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/llm"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/validation"
)

// Flashcard batch bounds.
const (
	MinFlashcards = 4
	MaxFlashcards = 8
)

var validate = validation.New()

// Parse turns a completed node completion into a StructuredNode. Any
// failure is a MalformedCompletion error whose Details describe what did
// not match.
func Parse(raw string) (models.StructuredNode, error) {
	var node models.StructuredNode

	payload, err := decodePayload(raw)
	if err != nil {
		return node, err
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&node); err != nil {
		return node, apperrors.MalformedCompletion("completion does not match node schema",
			map[string]string{"_": err.Error()}, err)
	}

	if details := validate.Details(node); details != nil {
		return models.StructuredNode{}, apperrors.MalformedCompletion("completion does not match node schema", details, nil)
	}
	return node, nil
}

type flashcardBatch struct {
	Cards []models.FlashcardInput `json:"cards" validate:"required,min=4,dive"`
}

// ParseFlashcards turns a flashcard completion into keyword/definition
// pairs. Batches beyond MaxFlashcards are truncated; fewer than
// MinFlashcards is a schema violation.
func ParseFlashcards(raw string) ([]models.FlashcardInput, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}

	var batch flashcardBatch
	if err := json.Unmarshal(payload, &batch.Cards); err != nil {
		return nil, apperrors.MalformedCompletion("completion is not a flashcard array",
			map[string]string{"_": err.Error()}, err)
	}

	if details := validate.Details(batch); details != nil {
		return nil, apperrors.MalformedCompletion("completion does not match flashcard schema", details, nil)
	}

	if len(batch.Cards) > MaxFlashcards {
		batch.Cards = batch.Cards[:MaxFlashcards]
	}
	return batch.Cards, nil
}

// decodePayload trims raw and returns it when it is valid JSON, otherwise
// the first balanced JSON value embedded in it.
func decodePayload(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, apperrors.MalformedCompletion("completion is empty", map[string]string{"_": "empty completion"}, nil)
	}
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}

	extracted, err := llm.ExtractJSON(trimmed)
	if err != nil {
		return nil, apperrors.MalformedCompletion(
			fmt.Sprintf("failed to parse completion as JSON: %v", err),
			map[string]string{"_": "completion is not valid JSON"}, err)
	}
	return []byte(extracted), nil
}
