package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/bridge"
	"github.com/andrewpaige1/learntree-api/config"
	"github.com/andrewpaige1/learntree-api/ratelimit"
	"github.com/andrewpaige1/learntree-api/store"
	"github.com/andrewpaige1/learntree-api/study"
	"github.com/andrewpaige1/learntree-api/utils"
	"github.com/andrewpaige1/learntree-api/validation"
)

// DBHandler serves the HTTP API. Limiter may be nil to disable rate
// limiting and a zero StreamTimeout leaves node streams unbounded.
type DBHandler struct {
	*store.Store
	Bridge        *bridge.Bridge
	Scheduler     *study.Scheduler
	Validator     *validation.Validator
	Limiter       *ratelimit.KeyedRateLimiter
	Auth          config.AuthConfig
	StreamTimeout time.Duration
	Logger        *zap.Logger
}

// decodeJSON decodes the request body into v and validates it.
func (db *DBHandler) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return db.Validator.Validate(v)
}

// writeError maps err to its status and writes {"error": message}.
// Unclassified errors become 500 and are logged.
func (db *DBHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal("Internal Server Error", err)
	}

	status := appErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		db.Logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}

	utils.WriteAppError(w, appErr)
}

// checkSubject rejects a request acting for userID when an authenticated
// subject is present and differs.
func (db *DBHandler) checkSubject(r *http.Request, userID string) error {
	subject, ok := utils.UserIDFromRequest(r)
	if !ok {
		if db.Auth.Enabled {
			return apperrors.Unauthorized("Unauthorized")
		}
		return nil
	}
	if subject != userID {
		return apperrors.Forbidden("Unauthorized")
	}
	return nil
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name, what string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 0)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("Invalid " + what + " ID format")
	}
	return uint(id), nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationWithDetails("Invalid query parameter",
			map[string]string{name: "must be an integer"})
	}
	return n, nil
}

func requireQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", apperrors.ValidationWithDetails(name+" is required",
			map[string]string{name: "is required"})
	}
	return v, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
