package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIGenerator {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	config := openai.DefaultConfig("test-api-key")
	config.BaseURL = ts.URL + "/v1"
	return newOpenAIGeneratorWithClient(openai.NewClientWithConfig(config), OpenAIConfig{
		Model:       "gpt-4o-mini",
		MaxTokens:   256,
		Temperature: 0.2,
	})
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:    "chatcmpl-test",
		Model: "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			},
		},
	})
}

func TestOpenAIGenerate(t *testing.T) {
	gen := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "ping", req.Messages[0].Content)

		writeCompletion(w, "  pong \n")
	})

	out, err := gen.Generate(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

func TestOpenAIGenerateWithImage(t *testing.T) {
	gen := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		parts := req.Messages[0].MultiContent
		require.Len(t, parts, 2)
		assert.Equal(t, openai.ChatMessagePartTypeText, parts[0].Type)
		require.NotNil(t, parts[1].ImageURL)
		assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", parts[1].ImageURL.URL)

		writeCompletion(w, "A cat on a sofa.")
	})

	out, err := gen.GenerateWithImage(context.Background(), "what is this", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "A cat on a sofa.", out)
}

func TestOpenAIGenerateErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		gen := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "Invalid API key", "type": "invalid_request_error"},
			})
		})
		_, err := gen.Generate(context.Background(), "ping")
		assert.Error(t, err)
	})

	t.Run("empty content", func(t *testing.T) {
		gen := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeCompletion(w, "   ")
		})
		_, err := gen.Generate(context.Background(), "ping")
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}

func TestDecodeImage(t *testing.T) {
	mt, data, err := decodeImage("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)
	assert.Equal(t, []byte("hello"), data)

	mt, _, err = decodeImage("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mt)

	_, _, err = decodeImage("%%%")
	assert.Error(t, err)
}
