package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/auth"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/utils"
)

type createUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=30"`
	Email string `json:"email" validate:"required,email"`
}

// POST /api/users
//
// When a signing key is configured the response also sets the auth cookie.
func (db *DBHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := db.decodeJSON(r, &req); err != nil {
		db.writeError(w, r, err)
		return
	}

	user := models.User{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if err := db.UpsertUser(r.Context(), &user); err != nil {
		db.writeError(w, r, err)
		return
	}

	if db.Auth.SecretKey != "" {
		token, err := auth.CreateToken(db.Auth, user.ID, user.Name, user.Email)
		if err != nil {
			db.Logger.Error("Token generation failed", zap.String("user_id", user.ID), zap.Error(err))
			db.writeError(w, r, apperrors.Internal("Failed to generate token", err))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(auth.DefaultTTL.Seconds()),
		})
	}

	db.Logger.Info("User created", zap.String("user_id", user.ID))
	utils.WriteJSON(w, http.StatusCreated, user)
}

// GET /api/users/{id}
func (db *DBHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		db.writeError(w, r, apperrors.Validation("User ID is required"))
		return
	}

	user, err := db.FindUserByID(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			err = apperrors.NotFound(fmt.Sprintf("User with id %s not found", id))
		}
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

// GET /api/users/{id}/trees
func (db *DBHandler) GetTreesForUser(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		db.writeError(w, r, apperrors.Validation("User ID is required"))
		return
	}
	if err := db.checkSubject(r, id); err != nil {
		db.writeError(w, r, err)
		return
	}

	summaries, err := db.TreeSummaries(r.Context(), id)
	if err != nil {
		db.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, summaries)
}
