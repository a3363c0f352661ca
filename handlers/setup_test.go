package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/learntree-api/bridge"
	"github.com/andrewpaige1/learntree-api/llm"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/store"
	"github.com/andrewpaige1/learntree-api/study"
	"github.com/andrewpaige1/learntree-api/validation"
)

const validNode = `{"status":"success","name":"Photosynthesis","content":"Plants turn light into sugar.","followups":["What is chlorophyll?","Why are leaves green?"]}`

const validCards = `[
	{"keyword":"Chlorophyll","definition":"Green pigment that absorbs light."},
	{"keyword":"Stomata","definition":"Pores that exchange gases."},
	{"keyword":"Glucose","definition":"Sugar made by photosynthesis."},
	{"keyword":"Light reactions","definition":"Stage that makes ATP and NADPH."}
]`

type testEnv struct {
	handler *DBHandler
	store   *store.Store
	llm     *llm.MockChatClient
	mux     *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	s := store.New(db)
	mock := &llm.MockChatClient{
		StreamChatFunc: func(context.Context, llm.ChatRequest) (llm.ChatStream, error) {
			return llm.NewFragmentStream(validNode[:40], validNode[40:90], validNode[90:]), nil
		},
		CompleteFunc: func(context.Context, llm.ChatRequest) (string, error) {
			return validCards, nil
		},
	}

	log := zap.NewNop()
	cards := bridge.NewFlashcardGenerator(mock, s, "cards-model", 500, log)
	h := &DBHandler{
		Store:     s,
		Bridge:    bridge.New(mock, s, cards, bridge.Config{NodeModel: "node-model"}, log),
		Scheduler: study.NewScheduler(s, log),
		Validator: validation.New(),
		Logger:    log,
	}

	return &testEnv{handler: h, store: s, llm: mock, mux: h.Routes(nil)}
}

func (e *testEnv) seedTree(t *testing.T, userID, name string) *models.Tree {
	t.Helper()
	tree := &models.Tree{Name: name, UserID: userID}
	require.NoError(t, e.store.CreateTree(context.Background(), tree))
	return tree
}

func (e *testEnv) seedNode(t *testing.T, tree *models.Tree, parent *models.Node, name string) *models.Node {
	t.Helper()
	node := &models.Node{
		TreeID:    tree.ID,
		UserID:    tree.UserID,
		Question:  "what is " + name,
		Name:      name,
		Content:   name + " content",
		Followups: []string{"more about " + name},
	}
	if parent != nil {
		node.ParentID = &parent.ID
	}
	require.NoError(t, e.store.CreateNode(context.Background(), node))
	return node
}

func (e *testEnv) seedCards(t *testing.T, node *models.Node, n int) []models.Flashcard {
	t.Helper()
	cards := make([]models.Flashcard, n)
	for i := range cards {
		cards[i] = models.Flashcard{
			NodeID:     node.ID,
			UserID:     node.UserID,
			Name:       fmt.Sprintf("term %d", i),
			Content:    fmt.Sprintf("definition %d", i),
			Interval:   models.DefaultInterval,
			EaseFactor: models.DefaultEaseFactor,
		}
	}
	require.NoError(t, e.store.CreateFlashcards(context.Background(), cards))
	return cards
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	claims := &validator.ValidatedClaims{RegisteredClaims: validator.RegisteredClaims{Subject: userID}}
	return req.WithContext(context.WithValue(req.Context(), jwtmiddleware.ContextKey{}, claims))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error
}
