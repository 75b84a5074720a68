package chat

import (
	"context"
	"strings"

	"gemini_chat/pkg/ai"
)

// Request is the stateless payload of one completion call. Earlier turns
// are never included.
type Request struct {
	Prompt      string
	Model       string
	Temperature float64
}

// Completer turns a prompt into reply text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// StreamCompleter is a Completer that can also report the reply as it arrives.
type StreamCompleter interface {
	Completer
	CompleteStream(ctx context.Context, req Request, onDelta func(string)) (string, error)
}

// ProviderCompleter adapts an ai.Provider to StreamCompleter.
type ProviderCompleter struct {
	Provider ai.Provider
}

func (p ProviderCompleter) chatRequest(req Request) ai.ChatRequest {
	temperature := req.Temperature
	return ai.ChatRequest{
		Model:       req.Model,
		Messages:    []ai.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temperature,
	}
}

func (p ProviderCompleter) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := p.Provider.CreateChatCompletion(ctx, p.chatRequest(req))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (p ProviderCompleter) CompleteStream(ctx context.Context, req Request, onDelta func(string)) (string, error) {
	stream, err := p.Provider.CreateChatCompletionStream(ctx, p.chatRequest(req))
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for stream.Next() {
		delta := stream.Content()
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}

var _ StreamCompleter = ProviderCompleter{}
