package llm

import (
	"context"
	"io"
	"sync"
)

// MockChatClient is a configurable ChatClient for tests.
// Set the function fields to control behavior; nil fields fall back to
// empty successful results.
type MockChatClient struct {
	StreamChatFunc func(ctx context.Context, req ChatRequest) (ChatStream, error)
	CompleteFunc   func(ctx context.Context, req ChatRequest) (string, error)

	mu               sync.Mutex
	StreamRequests   []ChatRequest
	CompleteRequests []ChatRequest
}

// StreamChat implements ChatClient.
func (m *MockChatClient) StreamChat(ctx context.Context, req ChatRequest) (ChatStream, error) {
	m.mu.Lock()
	m.StreamRequests = append(m.StreamRequests, req)
	m.mu.Unlock()
	if m.StreamChatFunc != nil {
		return m.StreamChatFunc(ctx, req)
	}
	return NewFragmentStream(), nil
}

// Complete implements ChatClient.
func (m *MockChatClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	m.mu.Lock()
	m.CompleteRequests = append(m.CompleteRequests, req)
	m.mu.Unlock()
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// CompleteCalls returns how many non-streaming completions were requested.
func (m *MockChatClient) CompleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompleteRequests)
}

// FragmentStream replays fixed fragments, then returns Err (io.EOF by default).
type FragmentStream struct {
	Fragments []string
	Err       error
	// Ctx, when set, is checked before every fragment like a network stream would.
	Ctx context.Context

	mu     sync.Mutex
	next   int
	closed bool
}

// NewFragmentStream returns a stream that yields fragments in order.
func NewFragmentStream(fragments ...string) *FragmentStream {
	return &FragmentStream{Fragments: fragments}
}

// Recv implements ChatStream.
func (s *FragmentStream) Recv() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Ctx != nil {
		if err := s.Ctx.Err(); err != nil {
			return "", err
		}
	}
	if s.next < len(s.Fragments) {
		f := s.Fragments[s.next]
		s.next++
		return f, nil
	}
	if s.Err != nil {
		return "", s.Err
	}
	return "", io.EOF
}

// Close implements ChatStream.
func (s *FragmentStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *FragmentStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
