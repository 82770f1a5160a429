package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedrewriter/pkg/config"
)

// llmServer returns a fake chat completions endpoint answering with reply and recording request bodies
func llmServer(t *testing.T, reply string, requests *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if requests != nil {
			*requests = append(*requests, body)
		}

		resp := openai.ChatCompletionResponse{}
		if reply != "" {
			resp.Choices = []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: reply}}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testConfig(endpoint string) config.LLMConfig {
	cfg := config.LLMConfig{
		Endpoint:    endpoint + "/v1",
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.5,
		MaxTokens:   500,
		Timeout:     5 * time.Second,
		Language:    "en",
	}
	cfg.Tags.MaxTokens = 50
	cfg.Tags.Timeout = 5 * time.Second
	return cfg
}

func messages(t *testing.T, req map[string]any) []map[string]any {
	t.Helper()
	raw, ok := req["messages"].([]any)
	require.True(t, ok)
	res := make([]map[string]any, 0, len(raw))
	for _, m := range raw {
		res = append(res, m.(map[string]any))
	}
	return res
}

func TestRewriter_Rewrite(t *testing.T) {
	var requests []map[string]any
	server := llmServer(t, "### Title: Breaking: Storm Hits City\n\nContent:\nThe storm caused damage.\n\n## Aftermath\nCleanup began.", &requests)
	defer server.Close()

	r := NewRewriter(testConfig(server.URL))
	res, err := r.Rewrite(context.Background(), RewriteRequest{
		Title:    "storm",
		Body:     "original body",
		Prompt:   "Be brief.",
		Research: "Source: https://other.org\nmore facts",
		TOC:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Breaking: Storm Hits City", res.Title)
	assert.True(t, strings.HasPrefix(res.HTMLBody, `<div class="frp-toc">`))
	assert.Contains(t, res.HTMLBody, "<p>The storm caused damage.</p>")
	assert.Contains(t, res.HTMLBody, `<h2 id="aftermath">Aftermath</h2>`)

	require.Len(t, requests, 1)
	assert.Equal(t, "gpt-4o-mini", requests[0]["model"])
	assert.InDelta(t, 500, requests[0]["max_tokens"], 0.1)
	msgs := messages(t, requests[0])
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0]["role"])
	prompt := msgs[0]["content"].(string)
	assert.True(t, strings.HasPrefix(prompt, "Be brief.\n\nRewrite the following title and content"))
	assert.Contains(t, prompt, "The rewritten text should be in English.")
	assert.Contains(t, prompt, "Title: storm\n\nContent:\noriginal body\n\nAdditional research context:\nSource: https://other.org")
	assert.True(t, strings.HasSuffix(prompt, "Please provide a polished and publishable title and content."))
}

func TestRewriter_RewriteNoTokenCap(t *testing.T) {
	var requests []map[string]any
	server := llmServer(t, "Title\n\nBody", &requests)
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxTokens = 0
	cfg.Language = "id"
	cfg.DefaultPrompt = "Gunakan gaya santai."

	res, err := NewRewriter(cfg).Rewrite(context.Background(), RewriteRequest{Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Title", res.Title)
	assert.Equal(t, "<p>Body</p>", res.HTMLBody)

	require.Len(t, requests, 1)
	_, hasCap := requests[0]["max_tokens"]
	assert.False(t, hasCap, "cap must be omitted, not sent as zero")
	prompt := messages(t, requests[0])[0]["content"].(string)
	assert.True(t, strings.HasPrefix(prompt, "Gunakan gaya santai.\n\n"))
	assert.Contains(t, prompt, "The rewritten text should be in Bahasa Indonesia.")
}

func TestRewriter_RewriteFallbackTitle(t *testing.T) {
	server := llmServer(t, "###\n\nSome body text", nil)
	defer server.Close()

	res, err := NewRewriter(testConfig(server.URL)).Rewrite(context.Background(), RewriteRequest{Title: "Original Title", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Original Title", res.Title)
}

func TestRewriter_Errors(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		server := llmServer(t, "", nil)
		defer server.Close()
		_, err := NewRewriter(testConfig(server.URL)).Rewrite(context.Background(), RewriteRequest{Title: "t", Body: "b"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyResponse))
	})

	t.Run("title only", func(t *testing.T) {
		server := llmServer(t, "Just a title", nil)
		defer server.Close()
		_, err := NewRewriter(testConfig(server.URL)).Rewrite(context.Background(), RewriteRequest{Title: "t", Body: "b"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptyResponse))
	})

	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
		}))
		defer server.Close()
		_, err := NewRewriter(testConfig(server.URL)).Rewrite(context.Background(), RewriteRequest{Title: "t", Body: "b"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm request failed")
	})
}

func TestRewriter_GenerateTags(t *testing.T) {
	var requests []map[string]any
	server := llmServer(t, "golang, concurrency, Go, testing, tooling, extra", &requests)
	defer server.Close()

	body := "<p>" + strings.Repeat("word ", 600) + "</p>"
	tags, err := NewRewriter(testConfig(server.URL)).GenerateTags(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "concurrency", "Go", "testing", "tooling"}, tags)

	require.Len(t, requests, 1)
	assert.InDelta(t, 50, requests[0]["max_tokens"], 0.1)
	msgs := messages(t, requests[0])
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0]["role"])
	assert.Equal(t, tagsSystemPrompt, msgs[0]["content"])
	user := msgs[1]["content"].(string)
	prefix := "Generate 5 relevant tags for the following content. Return only the tags separated by commas:\n\n"
	require.True(t, strings.HasPrefix(user, prefix))
	assert.Len(t, []rune(strings.TrimPrefix(user, prefix)), tagsInputLimit)
	assert.NotContains(t, user, "<p>")
}

func TestRewriter_GenerateTagsEmptyBody(t *testing.T) {
	tags, err := NewRewriter(config.LLMConfig{}).GenerateTags(context.Background(), "<p> </p>")
	require.NoError(t, err)
	assert.Empty(t, tags)
}
