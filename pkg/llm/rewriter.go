// Package llm rewrites articles and generates tags with an OpenAI-compatible chat API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/umputun/feedrewriter/pkg/config"
	"github.com/umputun/feedrewriter/pkg/domain"
)

// ErrEmptyResponse is returned when the model answered with no usable content
var ErrEmptyResponse = errors.New("empty llm response")

var tagNumberingRe = regexp.MustCompile(`^\d+[.)]\s*`)

const (
	tagsSystemPrompt = "You are a helpful assistant that generates relevant tags for content based on the key topics."
	tagsInputLimit   = 2000
	maxTags          = 5
)

// Rewriter uses LLM to rewrite articles
type Rewriter struct {
	client *openai.Client
	config config.LLMConfig
}

// RewriteRequest contains the article and per-feed options for a rewrite
type RewriteRequest struct {
	Title    string
	Body     string
	Prompt   string // custom instruction prefix, default prompt used if empty
	Research string // optional excerpts of related sources
	TOC      bool   // prepend table of contents built from h2 headings
}

// NewRewriter creates a new LLM rewriter
func NewRewriter(cfg config.LLMConfig) *Rewriter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	return &Rewriter{client: openai.NewClientWithConfig(clientConfig), config: cfg}
}

// Rewrite sends the article to the model and returns cleaned title and html body
func (r *Rewriter) Rewrite(ctx context.Context, req RewriteRequest) (*domain.RewrittenArticle, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = r.config.DefaultPrompt
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	content, err := r.complete(ctx, r.config.MaxTokens, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: BuildPrompt(prompt, r.config.Language, req.Title, req.Body, req.Research),
	})
	if err != nil {
		return nil, err
	}

	rawTitle, rawBody := SplitResponse(content)
	body := CleanBody(rawBody)
	if body == "" {
		return nil, fmt.Errorf("rewrite %q: no body in response: %w", req.Title, ErrEmptyResponse)
	}
	title := CleanTitle(rawTitle)
	if title == "" {
		title = CleanTitle(req.Title)
	}
	if req.TOC {
		body = BuildTOC(body)
	}
	return &domain.RewrittenArticle{Title: title, HTMLBody: body}, nil
}

// GenerateTags asks the model for up to five comma-separated tags describing the text
func (r *Rewriter) GenerateTags(ctx context.Context, body string) ([]string, error) {
	text := []rune(plainText(body))
	if len(text) > tagsInputLimit {
		text = text[:tagsInputLimit]
	}
	if len(text) == 0 {
		return nil, nil
	}

	if r.config.Tags.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Tags.Timeout)
		defer cancel()
	}

	content, err := r.complete(ctx, r.config.Tags.MaxTokens,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: tagsSystemPrompt},
		openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "Generate 5 relevant tags for the following content. Return only the tags separated by commas:\n\n" + string(text),
		},
	)
	if err != nil {
		return nil, err
	}
	return ParseTags(content), nil
}

// complete runs one chat completion, maxTokens <= 0 leaves the cap out of the request
func (r *Rewriter) complete(ctx context.Context, maxTokens int, msgs ...openai.ChatCompletionMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       r.config.Model,
		Temperature: float32(r.config.Temperature),
		Messages:    msgs,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices: %w", ErrEmptyResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// BuildPrompt makes the rewrite prompt. Language "id" asks for Bahasa Indonesia, anything else for English.
func BuildPrompt(custom, language, title, body, research string) string {
	lang := "English"
	if language == "id" {
		lang = "Bahasa Indonesia"
	}

	var sb strings.Builder
	if custom = strings.TrimSpace(custom); custom != "" {
		sb.WriteString(custom)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Rewrite the following title and content to make it suitable for publishing. ")
	sb.WriteString("Ensure the title is concise (maximum 65 characters) and engaging, and the content is well-structured ")
	sb.WriteString("without using unnecessary labels like 'Title:', 'Content:', or 'Let's continue...'. ")
	sb.WriteString("The rewritten text should be in " + lang + ".\n\n")
	sb.WriteString("Title: " + title + "\n\n")
	sb.WriteString("Content:\n" + body)
	if research = strings.TrimSpace(research); research != "" {
		sb.WriteString("\n\nAdditional research context:\n" + research)
	}
	sb.WriteString("\n\nPlease provide a polished and publishable title and content.")
	return sb.String()
}

// ParseTags splits the model answer into at most five unique tags
func ParseTags(s string) []string {
	seen := map[string]bool{}
	var res []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		t = tagNumberingRe.ReplaceAllString(strings.TrimSpace(t), "")
		t = strings.TrimLeft(t, "-*# ")
		t = strings.Trim(t, "\"'`. ")
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, t)
		if len(res) == maxTags {
			break
		}
	}
	return res
}
