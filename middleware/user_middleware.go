package middleware

import (
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"go.uber.org/zap"

	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/store"
	"github.com/andrewpaige1/learntree-api/utils"
)

// SyncUserMiddleware makes sure the token subject has a users row. When
// required is false, requests without a token pass through untouched.
func SyncUserMiddleware(s *store.Store, required bool, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok || claims.RegisteredClaims.Subject == "" {
				if required {
					utils.ErrorResponse(w, http.StatusUnauthorized, "No token subject found")
					return
				}
				next(w, r)
				return
			}

			user := models.User{ID: claims.RegisteredClaims.Subject}
			if custom, ok := claims.CustomClaims.(*CustomClaims); ok && custom != nil {
				user.Name = custom.Name
				user.Email = custom.Email
			}

			if err := s.UpsertUser(r.Context(), &user); err != nil {
				logger.Error("Failed to sync user", zap.String("user_id", user.ID), zap.Error(err))
				utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to sync user")
				return
			}

			next(w, r)
		}
	}
}
