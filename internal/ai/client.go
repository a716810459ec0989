// Package ai talks to an OpenAI-compatible chat completion endpoint and builds
// the sentiment classifier and recommendation engine on top of it.
package ai

import (
	"context"
	"errors"
)

// Operation labels used in logs and metrics.
const (
	OperationSentiment       = "sentiment"
	OperationRecommendations = "recommendations"
)

var (
	// ErrNotConfigured is returned by DisabledClient.
	ErrNotConfigured = errors.New("llm: no api key configured")
	// ErrEmptyReply is returned when the model answers with no choices.
	ErrEmptyReply = errors.New("llm: empty reply")
)

// ChatRequest is a single-turn conversation.
type ChatRequest struct {
	Operation string // metrics label
	System    string
	Prompt    string
}

// ChatClient sends a chat request and returns the assistant's reply text.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// DisabledClient stands in when no API key is configured.
type DisabledClient struct{}

// Complete always fails with ErrNotConfigured.
func (DisabledClient) Complete(context.Context, ChatRequest) (string, error) {
	return "", ErrNotConfigured
}
