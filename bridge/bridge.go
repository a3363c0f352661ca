// Package bridge turns a streaming LLM completion into bytes for the
// client while accumulating it into a persisted node.
//
// Bytes reach the reader before the node exists, and the node exists
// before the reader sees io.EOF. If the completion does not validate, no
// node is stored and the reader gets the error instead of io.EOF.
package bridge

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/andrewpaige1/learntree-api/apperrors"
	"github.com/andrewpaige1/learntree-api/llm"
	"github.com/andrewpaige1/learntree-api/models"
	"github.com/andrewpaige1/learntree-api/structured"
)

// DefaultFlashcardTimeout bounds flashcard generation after a node is stored.
const DefaultFlashcardTimeout = 60 * time.Second

// NodeStore persists nodes.
type NodeStore interface {
	CreateNode(ctx context.Context, node *models.Node) error
}

// Config selects the node model and sampling.
type Config struct {
	NodeModel        string
	Temperature      float64
	FlashcardTimeout time.Duration
}

// Bridge runs node generation.
type Bridge struct {
	client llm.ChatClient
	nodes  NodeStore
	cards  *FlashcardGenerator
	cfg    Config
	logger *zap.Logger
}

// New returns a Bridge. client may be nil, in which case every generation
// fails with UpstreamUnavailable; cards may be nil to skip flashcards.
func New(client llm.ChatClient, nodes NodeStore, cards *FlashcardGenerator, cfg Config, logger *zap.Logger) *Bridge {
	if cfg.FlashcardTimeout <= 0 {
		cfg.FlashcardTimeout = DefaultFlashcardTimeout
	}
	return &Bridge{
		client: client,
		nodes:  nodes,
		cards:  cards,
		cfg:    cfg,
		logger: logger.Named("bridge"),
	}
}

// GenerateNodeStream starts a completion for prompt and returns its raw
// text as a stream. Errors returned here happen before any byte is
// produced. Cancelling ctx aborts the completion and nothing is stored.
func (b *Bridge) GenerateNodeStream(ctx context.Context, prompt string, params models.CreateNodeParams) (io.ReadCloser, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperrors.Validation("prompt must not be empty")
	}
	if b.client == nil {
		return nil, apperrors.UpstreamUnavailable("server misconfiguration: LLM client not configured", nil)
	}
	if params.Question == "" {
		params.Question = prompt
	}

	stream, err := b.client.StreamChat(ctx, llm.ChatRequest{
		Model: b.cfg.NodeModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: llm.NodeSystemPrompt},
			{Role: llm.RoleUser, Content: llm.NodeUserPrompt(prompt)},
		},
		Temperature: b.cfg.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.UpstreamUnavailable("failed to start completion stream", err)
	}

	pr, pw := io.Pipe()
	go b.produce(ctx, stream, pw, params)
	return pr, nil
}

func (b *Bridge) produce(ctx context.Context, stream llm.ChatStream, pw *io.PipeWriter, params models.CreateNodeParams) {
	defer stream.Close()

	logger := b.logger.With(
		zap.Uint("tree_id", params.TreeID),
		zap.String("user_id", params.UserID))

	var full strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			logger.Info("Node stream cancelled", zap.Error(err))
			pw.CloseWithError(err)
			return
		}

		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("Completion stream failed", zap.Error(err))
			pw.CloseWithError(llm.ClassifyError(err))
			return
		}
		if delta == "" {
			continue
		}

		full.WriteString(delta)
		if _, err := io.WriteString(pw, delta); err != nil {
			logger.Info("Node stream reader closed", zap.Error(err))
			pw.CloseWithError(err)
			return
		}
	}

	parsed, err := structured.Parse(full.String())
	if err != nil {
		logger.Warn("Completion rejected", zap.Error(err), zap.Int("length", full.Len()))
		pw.CloseWithError(err)
		return
	}
	if err := ctx.Err(); err != nil {
		pw.CloseWithError(err)
		return
	}

	node := &models.Node{
		TreeID:    params.TreeID,
		ParentID:  params.ParentID,
		UserID:    params.UserID,
		Question:  params.Question,
		Name:      parsed.Name,
		Content:   parsed.Content,
		Followups: parsed.Followups,
	}
	if err := b.nodes.CreateNode(ctx, node); err != nil {
		logger.Error("Failed to store node", zap.Error(err))
		pw.CloseWithError(apperrors.Internal("failed to store node", err))
		return
	}
	logger.Info("Node created", zap.Uint("node_id", node.ID), zap.String("status", parsed.Status))

	b.generateFlashcards(ctx, node)
	pw.Close()
}

// generateFlashcards runs detached from the request so a late disconnect
// does not leave the node half processed. Failures are logged only.
func (b *Bridge) generateFlashcards(ctx context.Context, node *models.Node) {
	if b.cards == nil {
		return
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.cfg.FlashcardTimeout)
	defer cancel()

	if _, err := b.cards.Generate(fctx, node); err != nil {
		b.logger.Warn("Flashcard generation failed",
			zap.Uint("node_id", node.ID),
			zap.Error(err))
	}
}
