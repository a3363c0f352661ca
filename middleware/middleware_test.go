package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/learntree-api/auth"
	"github.com/andrewpaige1/learntree-api/config"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/store"
	"github.com/andrewpaige1/learntree-api/utils"
)

var authCfg = config.AuthConfig{
	Enabled:   true,
	SecretKey: "middleware-secret",
	Issuer:    "learntree-api",
	Audience:  "learntree-app",
}

func subjectHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.UserIDFromRequest(r)
	if !ok {
		id = "anonymous"
	}
	w.Write([]byte(id))
}

func TestEnsureValidToken(t *testing.T) {
	token, err := auth.CreateToken(authCfg, "user-1", "Ada", "ada@example.com")
	require.NoError(t, err)

	mw, err := EnsureValidToken(authCfg)
	require.NoError(t, err)
	h := mw(http.HandlerFunc(subjectHandler))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token}) }, http.StatusOK, "user-1"},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/trees", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestEnsureValidToken_Optional(t *testing.T) {
	cfg := authCfg
	cfg.Enabled = false
	mw, err := EnsureValidToken(cfg)
	require.NoError(t, err)
	h := mw(http.HandlerFunc(subjectHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEnsureValidToken_NoSecret(t *testing.T) {
	mw, err := EnsureValidToken(config.AuthConfig{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(subjectHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	_, err = EnsureValidToken(config.AuthConfig{Enabled: true})
	assert.Error(t, err)
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return store.New(db)
}

func TestSyncUserMiddleware(t *testing.T) {
	s := newStore(t)
	token, err := auth.CreateToken(authCfg, "user-9", "Grace", "grace@example.com")
	require.NoError(t, err)

	jwtMW, err := EnsureValidToken(authCfg)
	require.NoError(t, err)
	h := jwtMW(SyncUserMiddleware(s, true, zap.NewNop())(subjectHandler))

	req := httptest.NewRequest(http.MethodPost, "/api/trees", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := s.FindUserByID(context.Background(), "user-9")
	require.NoError(t, err)
	assert.Equal(t, "Grace", user.Name)
	assert.Equal(t, "grace@example.com", user.Email)
}

func TestSyncUserMiddleware_NoClaims(t *testing.T) {
	s := newStore(t)

	rec := httptest.NewRecorder()
	SyncUserMiddleware(s, true, zap.NewNop())(subjectHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	SyncUserMiddleware(s, false, zap.NewNop())(subjectHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("abc"))
		w.(http.Flusher).Flush()
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/nodes", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
	assert.True(t, rec.Flushed)
	require.Equal(t, 1, logs.Len())

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, int64(3), fields["bytes"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	h := RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRequestLogger_NilLogger(t *testing.T) {
	called := false
	h := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
