// Package llm provides the OpenAI-compatible chat client used to generate
// nodes and flashcards.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/andrewpaige1/learntree-api/apperrors"
)

// Message role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider to constrain output to a JSON object.
	JSONMode bool
}

// ChatStream yields completion text fragments. Recv returns io.EOF after the
// final fragment.
type ChatStream interface {
	Recv() (string, error)
	Close() error
}

// ChatClient is the provider contract consumed by the node pipeline.
type ChatClient interface {
	StreamChat(ctx context.Context, req ChatRequest) (ChatStream, error)
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Config holds configuration for creating an OpenAI-compatible client.
type Config struct {
	BaseURL string // e.g. "https://api.groq.com/openai/v1"
	APIKey  string
}

// OpenAIClient talks to any OpenAI-compatible endpoint (Groq by default).
type OpenAIClient struct {
	client  *openai.Client
	baseURL string
	logger  *zap.Logger
}

// NewOpenAIClient creates a client. A missing API key is reported as
// UpstreamUnavailable so callers can fail before any streaming starts.
func NewOpenAIClient(cfg Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.UpstreamUnavailable("server misconfiguration: LLM API key missing", nil)
	}
	if cfg.BaseURL == "" {
		return nil, apperrors.UpstreamUnavailable("server misconfiguration: LLM base URL missing", nil)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		baseURL: clientConfig.BaseURL,
		logger:  logger.Named("llm"),
	}, nil
}

// StreamChat opens a streaming completion. Errors returned here happen
// before any fragment is produced.
func (c *OpenAIClient) StreamChat(ctx context.Context, req ChatRequest) (ChatStream, error) {
	c.logger.Debug("Opening completion stream",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)))

	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(req))
	if err != nil {
		c.logger.Error("Failed to create stream", zap.String("model", req.Model), zap.Error(err))
		return nil, ClassifyError(err)
	}

	return &openAIStream{stream: stream, started: time.Now(), logger: c.logger, model: req.Model}, nil
}

// Complete performs a non-streaming completion and returns the assistant text.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.String("model", req.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperrors.UpstreamUnavailable("provider returned an empty response", nil)
	}

	c.logger.Info("LLM request completed",
		zap.String("model", req.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) buildRequest(req ChatRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	out := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return out
}

type openAIStream struct {
	stream    *openai.ChatCompletionStream
	started   time.Time
	logger    *zap.Logger
	model     string
	fragments int
}

func (s *openAIStream) Recv() (string, error) {
	for {
		response, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.logger.Debug("Completion stream finished",
				zap.String("model", s.model),
				zap.Int("fragments", s.fragments),
				zap.Duration("elapsed", time.Since(s.started)))
			return "", io.EOF
		}
		if err != nil {
			return "", ClassifyError(err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		s.fragments++
		return response.Choices[0].Delta.Content, nil
	}
}

func (s *openAIStream) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("close completion stream: %w", err)
	}
	return nil
}
