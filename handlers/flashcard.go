package handlers

import (
	"net/http"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/study"
	"github.com/andrewpaige1/learntree-api/utils"
)

type reviewRequest struct {
	UserID     string `json:"userId" validate:"required"`
	Difficulty string `json:"difficulty"`
	Confidence *int   `json:"confidence"`
}

// GET /api/flashcards/{nodeId}
func (db *DBHandler) GetFlashcardsForNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := pathID(r, "nodeId", "node")
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	cards, err := db.FindFlashcardsByNode(r.Context(), nodeID)
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, cards)
}

// POST /api/flashcards/{id}/review
//
// Accepts either a difficulty ("hard", "good", "easy") or a 0-100
// confidence score; difficulty wins when both are sent.
func (db *DBHandler) ReviewFlashcard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "id", "flashcard")
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	var req reviewRequest
	if err := db.decodeJSON(r, &req); err != nil {
		db.writeError(w, r, err)
		return
	}
	if err := db.checkSubject(r, req.UserID); err != nil {
		db.writeError(w, r, err)
		return
	}

	var d study.Difficulty
	switch {
	case req.Difficulty != "":
		d, err = study.ParseDifficulty(req.Difficulty)
	case req.Confidence != nil:
		d, err = study.DifficultyFromConfidence(*req.Confidence)
	default:
		err = apperrors.ValidationWithDetails("validation failed",
			map[string]string{"difficulty": "difficulty or confidence is required"})
	}
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	card, err := db.Scheduler.ReviewCard(r.Context(), cardID, req.UserID, d)
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, card)
}
