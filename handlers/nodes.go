package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/utils"
)

type createNodeRequest struct {
	Question string `json:"question" validate:"required,min=1,max=500"`
	UserID   string `json:"userId" validate:"required"`
	TreeID   uint   `json:"treeId" validate:"required,gte=1"`
	ParentID *uint  `json:"parentId" validate:"omitempty,gte=1"`
}

// POST /api/nodes
//
// Streams the raw completion text. The node is stored by the time the
// body ends; a failure after the first byte aborts the connection.
func (db *DBHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := db.decodeJSON(r, &req); err != nil {
		db.writeError(w, r, err)
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		db.writeError(w, r, apperrors.ValidationWithDetails("validation failed",
			map[string]string{"question": "is required"}))
		return
	}
	if err := db.checkSubject(r, req.UserID); err != nil {
		db.writeError(w, r, err)
		return
	}

	prompt, err := db.nodePrompt(r, req)
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	if db.Limiter != nil && !db.Limiter.Allow(req.UserID) {
		db.writeError(w, r, apperrors.RateLimited("Too many node requests, slow down"))
		return
	}

	ctx := r.Context()
	if db.StreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.StreamTimeout)
		defer cancel()
	}

	stream, err := db.Bridge.GenerateNodeStream(ctx, prompt, models.CreateNodeParams{
		Question: req.Question,
		UserID:   req.UserID,
		TreeID:   req.TreeID,
		ParentID: req.ParentID,
	})
	if err != nil {
		db.writeError(w, r, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusCreated)

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				db.Logger.Info("Client went away mid-stream", zap.Error(werr))
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			db.Logger.Warn("Node stream aborted",
				zap.Uint("tree_id", req.TreeID),
				zap.String("user_id", req.UserID),
				zap.Error(err))
			panic(http.ErrAbortHandler)
		}
	}
}

// nodePrompt checks that the user owns the target tree and returns the
// prompt: the question for a child node, the tree name for a root.
func (db *DBHandler) nodePrompt(r *http.Request, req createNodeRequest) (string, error) {
	ctx := r.Context()

	if req.ParentID != nil {
		parent, err := db.FindNodeByID(ctx, *req.ParentID)
		if err != nil {
			if isNotFound(err) {
				return "", apperrors.NotFound("Parent node not found")
			}
			return "", err
		}
		tree, err := db.FindTreeByID(ctx, parent.TreeID)
		if err != nil {
			if isNotFound(err) {
				return "", apperrors.NotFound("Tree not found")
			}
			return "", err
		}
		if tree.UserID != req.UserID {
			return "", apperrors.Forbidden("Unauthorized")
		}
		if tree.ID != req.TreeID {
			return "", apperrors.ValidationWithDetails("Parent node belongs to another tree",
				map[string]string{"parentId": "must belong to treeId"})
		}
		return req.Question, nil
	}

	tree, err := db.FindTreeByID(ctx, req.TreeID)
	if err != nil {
		if isNotFound(err) {
			return "", apperrors.NotFound("Tree not found")
		}
		return "", err
	}
	if tree.UserID != req.UserID {
		return "", apperrors.Forbidden("Unauthorized")
	}

	hasRoot, err := db.TreeHasRoot(ctx, tree.ID)
	if err != nil {
		return "", err
	}
	if hasRoot {
		return "", apperrors.Conflict("Tree already has a root node")
	}
	return tree.Name, nil
}

// GET /api/nodes?userId=&treeHash=
func (db *DBHandler) GetNodes(w http.ResponseWriter, r *http.Request) {
	userID, err := requireQuery(r, "userId")
	if err != nil {
		db.writeError(w, r, err)
		return
	}
	if err := db.checkSubject(r, userID); err != nil {
		db.writeError(w, r, err)
		return
	}

	nodes, err := db.FindNodesForUser(r.Context(), userID, strings.TrimSpace(r.URL.Query().Get("treeHash")))
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

// GET /api/nodes/{id}
func (db *DBHandler) GetNodeByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "node")
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	node, err := db.FindNodeByID(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			err = apperrors.NotFound("Node not found")
		}
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, node)
}
