package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, status int, content string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var request struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil || len(request.Messages) != 1 || request.Messages[0].Role != "user" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"upstream failure","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  request.Model,
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestSummarizer(endpoint, key string) *OpenAISummarizer {
	return NewOpenAISummarizer(OpenAIConfig{
		Endpoint: endpoint,
		APIKey:   key,
		Model:    "test-model",
		Logger:   zerolog.Nop(),
	})
}

func TestSummarizeParsesStructuredReply(t *testing.T) {
	server, calls := completionServer(t, http.StatusOK, "Here you go:\n```json\n{\"summary\":\"Backend developer\",\"skills\":{\"technical\":[\"Go\",\"SQL\",\"go\"],\"organizational\":[\"Teamwork\"]}}\n```")
	summarizer := newTestSummarizer(server.URL+"/v1/chat/completions", "test-key")

	result := summarizer.Summarize(context.Background(), "CV text")

	require.Equal(t, 1, *calls)
	require.False(t, result.Degraded)
	require.Equal(t, "Backend developer", result.Summary)
	require.Equal(t, []string{"Go", "SQL"}, result.Skills.Technical)
	require.Equal(t, []string{"Teamwork"}, result.Skills.Organizational)
}

func TestSummarizeFallsBackOnServerError(t *testing.T) {
	server, _ := completionServer(t, http.StatusInternalServerError, "")
	summarizer := newTestSummarizer(server.URL+"/v1/chat/completions", "test-key")

	result := summarizer.Summarize(context.Background(), "CV text")

	require.True(t, result.Degraded)
	require.Equal(t, FallbackSummary, result.Summary)
	require.Empty(t, result.Skills.Technical)
	require.Empty(t, result.Skills.Organizational)
}

func TestSummarizeWithoutKeySkipsRemoteCall(t *testing.T) {
	server, calls := completionServer(t, http.StatusOK, "{}")
	summarizer := newTestSummarizer(server.URL+"/v1/chat/completions", "")

	result := summarizer.Summarize(context.Background(), "CV text")

	require.Equal(t, 0, *calls)
	require.Equal(t, FallbackSummary, result.Summary)
}

func TestSummarizeKeepsRawTextWhenUnstructured(t *testing.T) {
	server, _ := completionServer(t, http.StatusOK, "  Motivated student with a taste for data.  ")
	summarizer := newTestSummarizer(server.URL+"/v1/chat/completions", "test-key")

	result := summarizer.Summarize(context.Background(), "CV text")

	require.True(t, result.Degraded)
	require.Equal(t, "Motivated student with a taste for data.", result.Summary)
	require.Empty(t, result.Skills.Technical)
}

func TestBaseURLStripsCompletionPath(t *testing.T) {
	require.Equal(t, "https://api.example.com/v1", baseURL("https://api.example.com/v1/chat/completions"))
	require.Equal(t, "https://api.example.com/v1", baseURL("https://api.example.com/v1/"))
	require.Equal(t, "", baseURL(""))
}
