package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/andrewpaige1/learntree-api/apperrors"
)

// ClassifyError maps provider failures onto the application taxonomy.
// Context cancellation is passed through untouched so callers can tell a
// client disconnect from a provider failure.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return apperrors.UpstreamUnavailable("LLM authentication failed", err)
		case 404:
			return apperrors.UpstreamUnavailable("LLM model or endpoint not found", err)
		case 429:
			return apperrors.UpstreamUnavailable("LLM rate limit exceeded", err)
		}
		return apperrors.UpstreamUnavailable("LLM request failed", err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperrors.UpstreamUnavailable("LLM request failed", err)
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") {
		return apperrors.UpstreamUnavailable("LLM endpoint unreachable", err)
	}
	return apperrors.UpstreamUnavailable("LLM request failed", err)
}
