package testutil

import (
	"context"
	"errors"
	"sync"

	"assistui/backend"
	"assistui/model"
)

// MockBackend implements exchange.Backend for testing
type MockBackend struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, messages []model.Message) (string, error)
	OpenStreamFunc func(ctx context.Context, messages []model.Message) (*backend.EventStream, error)

	mu          sync.Mutex
	chatCalls   [][]model.Message
	streamCalls [][]model.Message
}

// NewMockBackend creates a mock backend with default implementations
func NewMockBackend() *MockBackend {
	mock := &MockBackend{}
	mock.ChatFunc = mock.defaultChat
	mock.OpenStreamFunc = mock.defaultOpenStream
	return mock
}

func (m *MockBackend) defaultChat(ctx context.Context, messages []model.Message) (string, error) {
	return "Mock response", nil
}

func (m *MockBackend) defaultOpenStream(ctx context.Context, messages []model.Message) (*backend.EventStream, error) {
	return backend.NewEventStream(ChunkedBody(TextLine("Mock "), TextLine("response"), DoneLine())), nil
}

func (m *MockBackend) Chat(ctx context.Context, messages []model.Message) (string, error) {
	m.mu.Lock()
	m.chatCalls = append(m.chatCalls, messages)
	m.mu.Unlock()
	return m.ChatFunc(ctx, messages)
}

func (m *MockBackend) OpenStream(ctx context.Context, messages []model.Message) (*backend.EventStream, error) {
	m.mu.Lock()
	m.streamCalls = append(m.streamCalls, messages)
	m.mu.Unlock()
	return m.OpenStreamFunc(ctx, messages)
}

// ChatCalls returns the histories passed to Chat, in call order.
func (m *MockBackend) ChatCalls() [][]model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]model.Message(nil), m.chatCalls...)
}

// StreamCalls returns the histories passed to OpenStream, in call order.
func (m *MockBackend) StreamCalls() [][]model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]model.Message(nil), m.streamCalls...)
}

// Calls is the total number of backend requests made.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chatCalls) + len(m.streamCalls)
}

// TransportError mimics a connection failure.
func TransportError(endpoint string) error {
	return &backend.RequestError{Endpoint: endpoint, Err: errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")}
}

// StatusError mimics a non-2xx response.
func StatusError(endpoint string, status int) error {
	return &backend.RequestError{Endpoint: endpoint, StatusCode: status}
}
