package handlers

import (
	"net/http"
	"strings"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/layout"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/utils"
)

// Pagination defaults for GET /api/trees.
const (
	DefaultTreeLimit = 10
	MaxTreeLimit     = 100
)

type createTreeRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	UserID string `json:"userId" validate:"required"`
}

type treeListQuery struct {
	UserID string `json:"userId" validate:"required"`
	Limit  int    `json:"limit" validate:"gte=1,lte=100"`
	Offset int    `json:"offset" validate:"gte=0"`
}

// Pagination describes one page of a list.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// TreePage is the body of GET /api/trees.
type TreePage struct {
	Trees      []models.Tree `json:"trees"`
	Pagination Pagination    `json:"pagination"`
}

// POST /api/trees
func (db *DBHandler) CreateTree(w http.ResponseWriter, r *http.Request) {
	var req createTreeRequest
	if err := db.decodeJSON(r, &req); err != nil {
		db.writeError(w, r, err)
		return
	}
	if err := db.checkSubject(r, req.UserID); err != nil {
		db.writeError(w, r, err)
		return
	}

	tree := models.Tree{
		Name:   strings.TrimSpace(req.Name),
		UserID: req.UserID,
	}
	if tree.Name == "" {
		db.writeError(w, r, apperrors.ValidationWithDetails("validation failed",
			map[string]string{"name": "is required"}))
		return
	}

	if err := db.Store.CreateTree(r.Context(), &tree); err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, tree)
}

// GET /api/trees?userId=&limit=&offset=
func (db *DBHandler) GetTrees(w http.ResponseWriter, r *http.Request) {
	var q treeListQuery
	var err error
	q.UserID = strings.TrimSpace(r.URL.Query().Get("userId"))
	if q.Limit, err = queryInt(r, "limit", DefaultTreeLimit); err != nil {
		db.writeError(w, r, err)
		return
	}
	if q.Offset, err = queryInt(r, "offset", 0); err != nil {
		db.writeError(w, r, err)
		return
	}
	if err := db.Validator.Validate(q); err != nil {
		db.writeError(w, r, err)
		return
	}
	if err := db.checkSubject(r, q.UserID); err != nil {
		db.writeError(w, r, err)
		return
	}

	trees, total, err := db.ListTreesForUser(r.Context(), q.UserID, q.Limit, q.Offset)
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, TreePage{
		Trees: trees,
		Pagination: Pagination{
			Total:   total,
			Limit:   q.Limit,
			Offset:  q.Offset,
			HasMore: int64(q.Offset+q.Limit) < total,
		},
	})
}

// GET /api/trees/{treeHash}
func (db *DBHandler) GetTreeByHash(w http.ResponseWriter, r *http.Request) {
	tree, err := db.FindTreeByHash(r.Context(), r.PathValue("treeHash"))
	if err != nil {
		db.writeError(w, r, treeNotFound(err))
		return
	}

	// nodes is always present, empty until the root exists.
	resp := struct {
		*models.Tree
		Nodes []models.Node `json:"nodes"`
	}{Tree: tree, Nodes: tree.Nodes}
	if resp.Nodes == nil {
		resp.Nodes = []models.Node{}
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

// GET /api/trees/{treeHash}/latest_node
func (db *DBHandler) GetLatestNode(w http.ResponseWriter, r *http.Request) {
	node, err := db.FindLatestNodeForTree(r.Context(), r.PathValue("treeHash"))
	if err != nil {
		if isNotFound(err) {
			err = apperrors.NotFound("Tree has no nodes")
		}
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"node": node})
}

// GET /api/trees/{treeHash}/layout
func (db *DBHandler) GetTreeLayout(w http.ResponseWriter, r *http.Request) {
	tree, err := db.FindTreeByHash(r.Context(), r.PathValue("treeHash"))
	if err != nil {
		db.writeError(w, r, treeNotFound(err))
		return
	}

	nodes, err := db.FindNodesByTree(r.Context(), tree.ID)
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, layout.Compute(nodes))
}

func treeNotFound(err error) error {
	if isNotFound(err) {
		return apperrors.NotFound("Tree not found")
	}
	return err
}
