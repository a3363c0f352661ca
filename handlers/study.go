package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/utils"
)

// GET /api/study/due?userId=&treeId=1&treeId=2
//
// Without treeId the due cards of every tree of the user are returned.
func (db *DBHandler) GetDueFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, err := requireQuery(r, "userId")
	if err != nil {
		db.writeError(w, r, err)
		return
	}
	if err := db.checkSubject(r, userID); err != nil {
		db.writeError(w, r, err)
		return
	}

	var treeIDs []uint
	for _, raw := range r.URL.Query()["treeId"] {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
		if err != nil || id == 0 {
			db.writeError(w, r, apperrors.ValidationWithDetails("Invalid query parameter",
				map[string]string{"treeId": "must be a positive integer"}))
			return
		}
		treeIDs = append(treeIDs, uint(id))
	}

	cards, err := db.Scheduler.Due(r.Context(), userID, treeIDs)
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, cards)
}

// GET /api/users/{id}/study/stats
func (db *DBHandler) GetStudyStats(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("id"))
	if err := db.checkSubject(r, userID); err != nil {
		db.writeError(w, r, err)
		return
	}

	stats, err := db.Scheduler.Stats(r.Context(), userID)
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, stats)
}
