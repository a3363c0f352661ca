package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"

	"github.com/andrewpaige1/learntree-api/auth"
	"github.com/andrewpaige1/learntree-api/config"
	"github.com/andrewpaige1/learntree-api/utils"
)

// CustomClaims are the profile claims carried by issued tokens.
type CustomClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate does nothing; the claims are informational.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken validates bearer or cookie tokens signed with the
// configured secret. When auth is disabled, requests without a token pass
// through and requests with one are still validated. Without a secret
// nothing can be validated, so auth must be disabled.
func EnsureValidToken(cfg config.AuthConfig) (func(http.Handler) http.Handler, error) {
	if cfg.SecretKey == "" {
		if cfg.Enabled {
			return nil, errors.New("auth enabled without a secret key")
		}
		return func(next http.Handler) http.Handler { return next }, nil
	}

	jwtValidator, err := validator.New(
		func(ctx context.Context) (any, error) {
			return []byte(cfg.SecretKey), nil
		},
		validator.HS256,
		cfg.Issuer,
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		message := "Failed to validate JWT."
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			message = "JWT is missing."
		}
		utils.ErrorResponse(w, http.StatusUnauthorized, message)
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithCredentialsOptional(!cfg.Enabled),
		jwtmiddleware.WithValidateOnOptions(false),
		jwtmiddleware.WithTokenExtractor(jwtmiddleware.MultiTokenExtractor(
			jwtmiddleware.AuthHeaderTokenExtractor,
			jwtmiddleware.CookieTokenExtractor(auth.CookieName),
		)),
	)

	return mw.CheckJWT, nil
}
