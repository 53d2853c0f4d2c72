package provider

import "context"

// CompletionRequest is one LLM generation call.
type CompletionRequest struct {
	Model       string
	System      string // system prompt, may be empty
	Prompt      string // user prompt
	Temperature float32
	MaxTokens   int
}

// CompletionResponse carries the generated text and token accounting.
type CompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMProvider is the generation capability consumed by the orchestrator.
// Implementations own their transport, auth and timeouts; callers treat any
// error as "LLM unavailable" and fall back.
type LLMProvider interface {
	Name() string
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}
