package handlers

import (
	"net/http"
)

// Routes registers the API on a new mux. syncUser wraps the routes that
// act for the token subject; pass nil to skip user syncing.
func (db *DBHandler) Routes(syncUser func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	if syncUser == nil {
		syncUser = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	mux := http.NewServeMux()

	// Node
	mux.HandleFunc("POST /api/nodes", syncUser(db.CreateNode))
	mux.HandleFunc("GET /api/nodes", db.GetNodes)
	mux.HandleFunc("GET /api/nodes/{id}", db.GetNodeByID)

	// Tree
	mux.HandleFunc("POST /api/trees", syncUser(db.CreateTree))
	mux.HandleFunc("GET /api/trees", db.GetTrees)
	mux.HandleFunc("GET /api/trees/{treeHash}", db.GetTreeByHash)
	mux.HandleFunc("GET /api/trees/{treeHash}/latest_node", db.GetLatestNode)
	mux.HandleFunc("GET /api/trees/{treeHash}/layout", db.GetTreeLayout)

	// User
	mux.HandleFunc("POST /api/users", db.CreateUser)
	mux.HandleFunc("GET /api/users/{id}", db.GetUserByID)
	mux.HandleFunc("GET /api/users/{id}/trees", db.GetTreesForUser)
	mux.HandleFunc("GET /api/users/{id}/study/stats", db.GetStudyStats)

	// Flashcard
	mux.HandleFunc("GET /api/flashcards/{nodeId}", db.GetFlashcardsForNode)
	mux.HandleFunc("POST /api/flashcards/{id}/review", syncUser(db.ReviewFlashcard))
	mux.HandleFunc("GET /api/study/due", db.GetDueFlashcards)

	return mux
}
