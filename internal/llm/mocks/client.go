package mocks

import (
	"context"
	"errors"

	"github.com/SamuraiJenkinz/onsitereview/internal/llm"
)

// MockClient is a mock implementation of the llm.Client interface for
// testing the assessor.
type MockClient struct {
	CompleteFunc func(ctx context.Context, messages []llm.Message) (string, error)
}

// Complete implements the llm.Client interface
func (m *MockClient) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages)
	}
	return "", errors.New("CompleteFunc not implemented")
}
