package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"testing"

	"gemini_chat/pkg/ai"
	"gemini_chat/pkg/config"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(rt roundTripperFunc) *http.Client {
	return &http.Client{Transport: rt}
}

func newHTTPResponse(req *http.Request, status int, contentType string, body []byte) *http.Response {
	resp := &http.Response{
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}
	if contentType != "" {
		resp.Header.Set("Content-Type", contentType)
	}
	return resp
}

func newJSONResponse(t *testing.T, req *http.Request, status int, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return newHTTPResponse(req, status, "application/json", data)
}

func decodePayload(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	if req.Body == nil {
		t.Fatalf("expected request body")
	}
	var payload map[string]any
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	_ = req.Body.Close()
	return payload
}

func TestOpenAIProvider_CreateChatCompletion(t *testing.T) {
	var gotPath string
	var gotAuth string
	var gotPayload map[string]any

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		gotAuth = req.Header.Get("Authorization")
		gotPayload = decodePayload(t, req)

		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gemini-1.5-flash",
			"choices": []any{
				map[string]any{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": "ok",
					},
					"finish_reason": "stop",
				},
			},
		}
		return newJSONResponse(t, req, http.StatusOK, resp), nil
	})

	provider, err := newOpenAIProviderWithHTTPClient(config.OpenAIConfig{
		APIKey:      "test-key",
		APIURL:      "https://gemini.test/v1beta/openai/",
		Model:       "gemini-1.5-flash",
		Temperature: 0.4,
		MaxTokens:   55,
	}, client)
	if err != nil {
		t.Fatalf("newOpenAIProviderWithHTTPClient() error: %v", err)
	}

	resp, err := provider.CreateChatCompletion(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion() error: %v", err)
	}

	if resp.Content != "ok" {
		t.Fatalf("Expected response content 'ok', got %q", resp.Content)
	}
	if gotPath != "/v1beta/openai/chat/completions" {
		t.Fatalf("Expected chat completions path, got %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("Expected Authorization header, got %q", gotAuth)
	}

	if model, _ := gotPayload["model"].(string); model != "gemini-1.5-flash" {
		t.Fatalf("Expected model 'gemini-1.5-flash', got %q", model)
	}
	messages, ok := gotPayload["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %v", gotPayload["messages"])
	}
	first, _ := messages[0].(map[string]any)
	if first["role"] != "user" || first["content"] != "hello" {
		t.Fatalf("Unexpected message payload: %v", first)
	}
	temp, _ := gotPayload["temperature"].(float64)
	if math.Abs(temp-0.4) > 0.0001 {
		t.Fatalf("Expected temperature 0.4, got %v", gotPayload["temperature"])
	}
	maxTokens, _ := gotPayload["max_tokens"].(float64)
	if int(maxTokens) != 55 {
		t.Fatalf("Expected max_tokens 55, got %v", gotPayload["max_tokens"])
	}
}

func TestOpenAIProvider_ZeroTemperatureIsSent(t *testing.T) {
	var gotPayload map[string]any
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotPayload = decodePayload(t, req)
		return newJSONResponse(t, req, http.StatusOK, map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "m",
			"choices": []any{},
		}), nil
	})

	provider, err := newOpenAIProviderWithHTTPClient(config.OpenAIConfig{APIKey: "k", Model: "m"}, client)
	if err != nil {
		t.Fatalf("newOpenAIProviderWithHTTPClient() error: %v", err)
	}

	zero := 0.0
	resp, err := provider.CreateChatCompletion(context.Background(), ai.ChatRequest{
		Messages:    []ai.Message{{Role: "user", Content: "hello"}},
		Temperature: &zero,
	})
	if err != nil {
		t.Fatalf("CreateChatCompletion() error: %v", err)
	}
	if resp.Content != "" {
		t.Fatalf("Expected empty content without choices, got %q", resp.Content)
	}
	temp, ok := gotPayload["temperature"].(float64)
	if !ok || temp != 0 {
		t.Fatalf("Expected temperature 0 to be sent, got %v", gotPayload["temperature"])
	}
}

func TestOpenAIProvider_CreateChatCompletionStream(t *testing.T) {
	var gotPayload map[string]any

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotPayload = decodePayload(t, req)

		chunk := func(content, finish string) []byte {
			data, err := json.Marshal(map[string]any{
				"id":      "stream-1",
				"object":  "chat.completion.chunk",
				"created": 1,
				"model":   "gemini-1.5-pro",
				"choices": []any{
					map[string]any{
						"index":         0,
						"delta":         map[string]any{"content": content},
						"finish_reason": finish,
					},
				},
			})
			if err != nil {
				t.Fatalf("failed to marshal chunk: %v", err)
			}
			return data
		}

		var stream strings.Builder
		stream.WriteString("data: ")
		_, _ = stream.Write(chunk("Hello", ""))
		stream.WriteString("\n\n")
		stream.WriteString("data: ")
		_, _ = stream.Write(chunk(" world", "stop"))
		stream.WriteString("\n\n")
		stream.WriteString("data: [DONE]\n\n")

		return newHTTPResponse(req, http.StatusOK, "text/event-stream", []byte(stream.String())), nil
	})

	provider, err := newOpenAIProviderWithHTTPClient(config.OpenAIConfig{
		APIKey: "test-key",
		APIURL: "https://gemini.test/v1beta/openai/",
		Model:  "gemini-1.5-flash",
	}, client)
	if err != nil {
		t.Fatalf("newOpenAIProviderWithHTTPClient() error: %v", err)
	}

	stream, err := provider.CreateChatCompletionStream(context.Background(), ai.ChatRequest{
		Model:    "gemini-1.5-pro",
		Messages: []ai.Message{{Role: "user", Content: "stream"}},
	})
	if err != nil {
		t.Fatalf("CreateChatCompletionStream() error: %v", err)
	}
	defer stream.Close()

	var output strings.Builder
	for stream.Next() {
		output.WriteString(stream.Content())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if output.String() != "Hello world" {
		t.Fatalf("Expected stream output 'Hello world', got %q", output.String())
	}
	if model, _ := gotPayload["model"].(string); model != "gemini-1.5-pro" {
		t.Fatalf("Expected model override, got %q", model)
	}
	if streamFlag, _ := gotPayload["stream"].(bool); !streamFlag {
		t.Fatalf("Expected stream=true, got %v", gotPayload["stream"])
	}
}

func TestOpenAIProvider_ServiceError(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return newJSONResponse(t, req, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "bad key", "type": "invalid_request_error"},
		}), nil
	})

	provider, err := newOpenAIProviderWithHTTPClient(config.OpenAIConfig{APIKey: "k"}, client)
	if err != nil {
		t.Fatalf("newOpenAIProviderWithHTTPClient() error: %v", err)
	}

	if _, err := provider.CreateChatCompletion(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{{Role: "user", Content: "hello"}},
	}); err == nil {
		t.Fatal("Expected error for 401 response")
	}
}

func TestOpenAIProvider_ValidationErrors(t *testing.T) {
	_, err := NewOpenAIProvider(ai.ProviderConfig{
		Type:   ai.ProviderOpenAI,
		Config: config.Config{},
	})
	if !errors.Is(err, ai.ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}

	provider, err := newOpenAIProviderWithHTTPClient(config.OpenAIConfig{APIKey: "k"}, nil)
	if err != nil {
		t.Fatalf("newOpenAIProviderWithHTTPClient() error: %v", err)
	}
	if _, err := provider.buildChatParams(ai.ChatRequest{}); err == nil {
		t.Fatal("Expected error for empty messages")
	}
	if _, err := provider.buildChatParams(ai.ChatRequest{
		Messages: []ai.Message{{Role: "tool", Content: "x"}},
	}); err == nil || !strings.Contains(err.Error(), "unsupported role") {
		t.Fatalf("Expected unsupported role error, got %v", err)
	}
}

func TestToChatMessageParam(t *testing.T) {
	for _, role := range []string{"system", "user", "assistant", " USER "} {
		if _, err := toChatMessageParam(ai.Message{Role: role, Content: "x"}); err != nil {
			t.Errorf("toChatMessageParam(%q) unexpected error: %v", role, err)
		}
	}
	if _, err := toChatMessageParam(ai.Message{Role: "developer"}); err == nil {
		t.Error("Expected developer role to be rejected")
	}
}
